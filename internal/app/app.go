package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/annabbc1804/vitamin-bot/internal/config"
	"github.com/annabbc1804/vitamin-bot/internal/domain"
	"github.com/annabbc1804/vitamin-bot/internal/metrics"
	"github.com/annabbc1804/vitamin-bot/internal/reminder"
	"github.com/annabbc1804/vitamin-bot/internal/scheduler"
	"github.com/annabbc1804/vitamin-bot/internal/store"
	"github.com/annabbc1804/vitamin-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	loc     *time.Location
	table   domain.Table
	clock   clockwork.Clock
	metrics *metrics.Recorder
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := domain.ValidateTZ(cfg.TZName)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.TZName, err)
	}
	table, err := config.LoadSchedule(cfg.ScheduleFile)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{
		cfg:     cfg,
		log:     log,
		bot:     bot,
		loc:     loc,
		table:   table,
		clock:   clockwork.NewRealClock(),
		metrics: metrics.New(reg),
		httpSrv: srv,
	}, nil
}

func (a *App) openRepo(ctx context.Context) (store.Repo, error) {
	if a.cfg.StoreBackend == "json" {
		return store.OpenJSON(a.cfg.DataFile)
	}
	return store.OpenSQLite(ctx, a.cfg.DBPath)
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting vitamin-bot",
		zap.String("tz", a.loc.String()),
		zap.String("store", a.cfg.StoreBackend),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo, err := a.openRepo(ctx)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	states := store.Open(ctx, repo, a.clock, a.loc, a.log.Named("store"), a.metrics)

	sched, err := scheduler.New(a.table, a.loc, a.clock, a.log.Named("scheduler"))
	if err != nil {
		_ = states.Close(ctx)
		return err
	}

	svc := reminder.New(states, telegram.NewNotifier(a.bot), a.table, a.log.Named("reminder"), a.metrics)
	svc.SetInstaller(sched)
	sched.SetFirer(svc)
	router := telegram.NewRouter(a.bot, a.log.Named("telegram"), svc)

	users := states.Registered()
	installed := sched.InstallAll(users)
	a.log.Info("schedules installed", zap.Int("registered", len(users)), zap.Int("installed", installed))
	sched.Start()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			if err := sched.Stop(); err != nil {
				a.log.Warn("scheduler shutdown error", zap.Error(err))
			}

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if err := states.Close(shCtx); err != nil {
				a.log.Warn("store close error", zap.Error(err))
			}
			cancel()
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}
