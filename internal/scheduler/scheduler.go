package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
	"github.com/annabbc1804/vitamin-bot/internal/reminder"
)

// Firer handles a fired slot for a user. reminder.Service implements it.
type Firer interface {
	Fire(ctx context.Context, userID int64, slot domain.Slot) reminder.Decision
}

// JobKey identifies one recurring trigger.
type JobKey struct {
	UserID  int64
	Slot    domain.Slot
	DayType domain.DayType
}

// String renders the key as the gocron job name.
func (k JobKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.UserID, k.DayType, k.Slot)
}

func userTag(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// Scheduler installs per-user weekly triggers on gocron, one per slot and day type.
type Scheduler struct {
	scheduler gocron.Scheduler
	table     domain.Table
	log       *zap.Logger
	firer     Firer
}

// New creates a scheduler that fires in loc using clock.
func New(table domain.Table, loc *time.Location, clock clockwork.Clock, log *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, table: table, log: log}, nil
}

// SetFirer injects the slot handler.
func (s *Scheduler) SetFirer(f Firer) { s.firer = f }

// Start begins firing installed jobs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler starting", zap.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.log.Info("scheduler stopping")
	return s.scheduler.Shutdown()
}

// Install replaces every trigger of the user with a fresh set of ten:
// five slots on weekdays and five on weekends.
func (s *Scheduler) Install(userID int64) error {
	tag := userTag(userID)
	s.scheduler.RemoveByTags(tag)

	for _, dt := range domain.DayTypes {
		days := dt.Days()
		for _, ev := range s.table.EventsFor(dt) {
			key := JobKey{UserID: userID, Slot: ev.Slot, DayType: dt}
			_, err := s.scheduler.NewJob(
				gocron.WeeklyJob(1,
					gocron.NewWeekdays(days[0], days[1:]...),
					gocron.NewAtTimes(gocron.NewAtTime(uint(ev.Minutes/60), uint(ev.Minutes%60), 0)),
				),
				gocron.NewTask(s.fire, userID, ev.Slot),
				gocron.WithName(key.String()),
				gocron.WithTags(tag),
			)
			if err != nil {
				return fmt.Errorf("install %s: %w", key, err)
			}
		}
	}
	s.log.Debug("schedule installed", zap.Int64("userID", userID))
	return nil
}

// InstallAll installs triggers for every user; failures are logged per user.
func (s *Scheduler) InstallAll(userIDs []int64) int {
	ok := 0
	for _, id := range userIDs {
		if err := s.Install(id); err != nil {
			s.log.Error("install schedule failed", zap.Error(err), zap.Int64("userID", id))
			continue
		}
		ok++
	}
	return ok
}

// Jobs returns the sorted job names currently installed for a user.
func (s *Scheduler) Jobs(userID int64) []string {
	tag := userTag(userID)
	var names []string
	for _, j := range s.scheduler.Jobs() {
		for _, t := range j.Tags() {
			if t == tag {
				names = append(names, j.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) fire(userID int64, slot domain.Slot) {
	if s.firer == nil {
		s.log.Error("scheduler firer not set", zap.Int64("userID", userID), zap.String("slot", string(slot)))
		return
	}
	s.firer.Fire(context.Background(), userID, slot)
}
