package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
	"github.com/annabbc1804/vitamin-bot/internal/metrics"
)

// ReplyOptions tells the transport how to render a message.
type ReplyOptions struct {
	YesNo bool // attach a two-button yes/no prompt
}

// Notifier delivers a message to a user's chat.
type Notifier interface {
	Notify(chatID int64, text string, opts ReplyOptions) error
}

// Installer (re)installs a user's recurring reminder triggers.
type Installer interface {
	Install(userID int64) error
}

// StateStore is the rollover-aware per-user state accessor.
type StateStore interface {
	Update(ctx context.Context, userID int64, fn func(st *domain.DoseState)) domain.DoseState
	Get(ctx context.Context, userID int64) domain.DoseState
	Register(ctx context.Context, userID int64) bool
	Now() time.Time
}

// Service is the reminder engine plus the command surface exposed to the chat router.
type Service struct {
	states    StateStore
	notifier  Notifier
	installer Installer
	table     domain.Table
	log       *zap.Logger
	metrics   *metrics.Recorder
}

// New creates a Service. The installer is injected later with SetInstaller since
// the scheduler fires back into the Service.
func New(states StateStore, notifier Notifier, table domain.Table, log *zap.Logger, m *metrics.Recorder) *Service {
	return &Service{
		states:   states,
		notifier: notifier,
		table:    table,
		log:      log,
		metrics:  m,
	}
}

// SetInstaller injects the job scheduler.
func (s *Service) SetInstaller(i Installer) { s.installer = i }

func (s *Service) dayType() domain.DayType {
	now := s.states.Now()
	return domain.DayTypeFor(now, now.Location())
}

func (s *Service) clockOf(dt domain.DayType, slot domain.Slot) string {
	e, _ := s.table.At(dt, slot)
	return e.Clock()
}

// Start registers the user on first contact, installing their schedule, and
// returns the greeting.
func (s *Service) Start(ctx context.Context, userID int64, firstName string) string {
	s.states.Get(ctx, userID)

	if s.states.Register(ctx, userID) {
		if s.installer == nil {
			s.log.Error("installer not set", zap.Int64("userID", userID))
		} else if err := s.installer.Install(userID); err != nil {
			s.log.Error("install schedule failed", zap.Error(err), zap.Int64("userID", userID))
		}
		s.log.Info("new user registered", zap.Int64("userID", userID), zap.String("name", firstName))
	}

	dt := s.dayType()
	return fmt.Sprintf(startFmt,
		firstName,
		dayLabel(dt),
		s.clockOf(dt, domain.SlotMorningFirst),
		s.clockOf(dt, domain.SlotLunchFirst),
		s.clockOf(dt, domain.SlotFinal),
	)
}

// Status describes today's confirmations.
func (s *Service) Status(ctx context.Context, userID int64) string {
	st := s.states.Get(ctx, userID)
	now := s.states.Now()

	body := fmt.Sprintf(statusFmt,
		domain.FormatDate(now, now.Location()),
		mark(st.MorningTaken),
		mark(st.LunchTaken),
	)
	if st.AllTaken() {
		body += "\n\n" + statusAllTaken
	}
	return body
}

// Reset clears today's flags and counters.
func (s *Service) Reset(ctx context.Context, userID int64) string {
	s.states.Update(ctx, userID, func(st *domain.DoseState) { st.Clear() })
	s.log.Info("state reset by user", zap.Int64("userID", userID))
	return resetText
}

// ScheduleInfo lists today's reminder times.
func (s *Service) ScheduleInfo() string {
	dt := s.dayType()
	return fmt.Sprintf(scheduleFmt,
		dayLabel(dt),
		s.clockOf(dt, domain.SlotMorningFirst),
		s.clockOf(dt, domain.SlotMorningSecond),
		s.clockOf(dt, domain.SlotLunchFirst),
		s.clockOf(dt, domain.SlotLunchSecond),
		s.clockOf(dt, domain.SlotFinal),
	)
}

// Answer classifies free text from the user.
type Answer int

const (
	AnswerOther Answer = iota
	AnswerYes
	AnswerNo
)

// ParseAnswer matches yes/no replies case-insensitively.
func ParseAnswer(text string) Answer {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "да":
		return AnswerYes
	case "no", "нет":
		return AnswerNo
	default:
		return AnswerOther
	}
}

// HandleText processes a non-command reply and returns the response text.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) string {
	switch ParseAnswer(text) {
	case AnswerYes:
		var (
			dose domain.Dose
			ok   bool
		)
		s.states.Update(ctx, userID, func(st *domain.DoseState) { dose, ok = st.Confirm() })
		if !ok {
			return alreadyDoneText
		}
		s.metrics.IncConfirmation(string(dose))
		s.log.Info("dose confirmed", zap.Int64("userID", userID), zap.String("dose", string(dose)))
		return confirmedText(dose)
	case AnswerNo:
		s.states.Get(ctx, userID)
		return laterText
	default:
		s.states.Get(ctx, userID)
		return helpText
	}
}
