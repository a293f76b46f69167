package reminder

import (
	"context"

	"go.uber.org/zap"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

// Variant identifies which reminder message a slot firing produces.
type Variant string

const (
	VariantNone             Variant = ""
	VariantMorningFirst     Variant = "morning_first"
	VariantMorningSecond    Variant = "morning_second"
	VariantLunchWithMorning Variant = "lunch_with_morning"
	VariantLunch            Variant = "lunch"
	VariantOverdueBoth      Variant = "overdue_both"
	VariantLunchRepeat      Variant = "lunch_repeat"
	VariantFinalMissing     Variant = "final_missing"
	VariantCongratulation   Variant = "congratulation"
)

// Decision is the outcome of one slot firing.
type Decision struct {
	Slot    domain.Slot
	Variant Variant
	Missing []domain.Dose // only for VariantFinalMissing
}

// Send reports whether the firing produces a message.
func (d Decision) Send() bool { return d.Variant != VariantNone }

// Transition evaluates a fired slot against the user's state, applies the
// counter update and returns the message to send.
//
// lunch_first sets the lunch counter whenever it fires; the morning slots only
// count reminders they actually send.
func Transition(slot domain.Slot, st *domain.DoseState) Decision {
	d := Decision{Slot: slot}
	switch slot {
	case domain.SlotMorningFirst:
		if !st.MorningTaken {
			d.Variant = VariantMorningFirst
			st.MorningReminderCount = 1
		}
	case domain.SlotMorningSecond:
		if !st.MorningTaken {
			d.Variant = VariantMorningSecond
			st.MorningReminderCount = 2
		}
	case domain.SlotLunchFirst:
		switch {
		case !st.MorningTaken && !st.LunchTaken:
			d.Variant = VariantLunchWithMorning
		case !st.LunchTaken:
			d.Variant = VariantLunch
		}
		st.LunchReminderCount = 1
	case domain.SlotLunchSecond:
		switch {
		case !st.MorningTaken && !st.LunchTaken:
			d.Variant = VariantOverdueBoth
		case !st.LunchTaken:
			d.Variant = VariantLunchRepeat
		}
	case domain.SlotFinal:
		if st.AllTaken() {
			d.Variant = VariantCongratulation
		} else {
			d.Variant = VariantFinalMissing
			d.Missing = st.Missing()
		}
	}
	return d
}

// Fire handles a scheduled slot for one user. Delivery failures are logged and
// do not undo the counter update; nothing is returned to the caller as an error.
func (s *Service) Fire(ctx context.Context, userID int64, slot domain.Slot) Decision {
	if _, err := domain.ParseSlot(string(slot)); err != nil {
		s.log.Warn("fired unknown slot", zap.Error(err), zap.Int64("userID", userID))
		return Decision{Slot: slot}
	}

	var d Decision
	s.states.Update(ctx, userID, func(st *domain.DoseState) {
		d = Transition(slot, st)
		if !d.Send() {
			s.metrics.IncSuppressed(string(slot))
			s.log.Debug("reminder suppressed", zap.Int64("userID", userID), zap.String("slot", string(slot)))
			return
		}

		opts := ReplyOptions{YesNo: d.Variant != VariantCongratulation}
		if err := s.notifier.Notify(userID, reminderText(d), opts); err != nil {
			s.metrics.IncDeliveryFailure(string(slot))
			s.log.Error("reminder delivery failed",
				zap.Error(err),
				zap.Int64("userID", userID),
				zap.String("slot", string(slot)),
			)
			return
		}
		s.metrics.IncSent(string(slot), string(d.Variant))
		s.log.Info("reminder sent",
			zap.Int64("userID", userID),
			zap.String("slot", string(slot)),
			zap.String("variant", string(d.Variant)),
		)
	})
	return d
}
