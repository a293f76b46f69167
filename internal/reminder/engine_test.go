package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name        string
		slot        domain.Slot
		morning     bool
		lunch       bool
		wantVariant Variant
		wantMorning int
		wantLunch   int
	}{
		{"morning_first pending", domain.SlotMorningFirst, false, false, VariantMorningFirst, 1, 0},
		{"morning_first taken", domain.SlotMorningFirst, true, false, VariantNone, 0, 0},
		{"morning_second pending", domain.SlotMorningSecond, false, true, VariantMorningSecond, 2, 0},
		{"morning_second taken", domain.SlotMorningSecond, true, true, VariantNone, 0, 0},
		{"lunch_first both pending", domain.SlotLunchFirst, false, false, VariantLunchWithMorning, 0, 1},
		{"lunch_first lunch pending", domain.SlotLunchFirst, true, false, VariantLunch, 0, 1},
		{"lunch_first lunch taken", domain.SlotLunchFirst, true, true, VariantNone, 0, 1},
		{"lunch_first only lunch taken", domain.SlotLunchFirst, false, true, VariantNone, 0, 1},
		{"lunch_second both pending", domain.SlotLunchSecond, false, false, VariantOverdueBoth, 0, 0},
		{"lunch_second lunch pending", domain.SlotLunchSecond, true, false, VariantLunchRepeat, 0, 0},
		{"lunch_second lunch taken", domain.SlotLunchSecond, false, true, VariantNone, 0, 0},
		{"final all taken", domain.SlotFinal, true, true, VariantCongratulation, 0, 0},
		{"final missing", domain.SlotFinal, false, false, VariantFinalMissing, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st := domain.DoseState{MorningTaken: c.morning, LunchTaken: c.lunch, LastResetDate: "2025-05-05"}
			d := Transition(c.slot, &st)
			assert.Equal(t, c.wantVariant, d.Variant)
			assert.Equal(t, c.wantVariant != VariantNone, d.Send())
			assert.Equal(t, c.wantMorning, st.MorningReminderCount)
			assert.Equal(t, c.wantLunch, st.LunchReminderCount)
			assert.Equal(t, c.morning, st.MorningTaken)
			assert.Equal(t, c.lunch, st.LunchTaken)
		})
	}
}

func TestTransition_FinalListsMissingDoses(t *testing.T) {
	st := domain.DoseState{LunchTaken: true}
	d := Transition(domain.SlotFinal, &st)
	assert.Equal(t, VariantFinalMissing, d.Variant)
	assert.Equal(t, []domain.Dose{domain.DoseMorning}, d.Missing)
	assert.Contains(t, reminderText(d), "Still missing: morning vitamins!")

	st = domain.DoseState{}
	d = Transition(domain.SlotFinal, &st)
	assert.Equal(t, []domain.Dose{domain.DoseMorning, domain.DoseLunch}, d.Missing)
	assert.Contains(t, reminderText(d), "morning and lunch")

	st = domain.DoseState{MorningTaken: true, LunchTaken: true}
	d = Transition(domain.SlotFinal, &st)
	assert.Empty(t, d.Missing)
	assert.Equal(t, congratsText, reminderText(d))
}

func TestFire_LunchFirstOverdueMorning(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 15, 0)
	ctx := context.Background()

	d := f.svc.Fire(ctx, 1, domain.SlotLunchFirst)
	assert.Equal(t, VariantLunchWithMorning, d.Variant)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].chatID)
	assert.Equal(t, lunchWithMorning, msgs[0].text)
	assert.True(t, msgs[0].opts.YesNo)

	assert.Equal(t, 1, f.states.Get(ctx, 1).LunchReminderCount)
	assert.Equal(t, 1, f.persisted(t, 1).LunchReminderCount)
}

func TestFire_CongratulationHasNoButtons(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 17, 45)
	f.seed(1, true, true)

	d := f.svc.Fire(context.Background(), 1, domain.SlotFinal)
	assert.Equal(t, VariantCongratulation, d.Variant)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].opts.YesNo)
}

func TestFire_TakenDoseSendsNothingButPersists(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 12, 20)
	f.seed(1, true, false)

	d := f.svc.Fire(context.Background(), 1, domain.SlotMorningFirst)
	assert.False(t, d.Send())
	assert.Empty(t, f.notifier.messages())
	assert.True(t, f.persisted(t, 1).MorningTaken)
}

func TestFire_DeliveryFailureKeepsCounter(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 12, 40)
	f.notifier.fail = true
	ctx := context.Background()

	d := f.svc.Fire(ctx, 1, domain.SlotMorningSecond)
	assert.Equal(t, VariantMorningSecond, d.Variant)
	assert.Equal(t, 2, f.states.Get(ctx, 1).MorningReminderCount)
	assert.Equal(t, 2, f.persisted(t, 1).MorningReminderCount)
}

func TestFire_UnknownSlotIsIgnored(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 12, 40)

	d := f.svc.Fire(context.Background(), 1, domain.Slot("dinner"))
	assert.False(t, d.Send())
	assert.Empty(t, f.notifier.messages())
}

func TestFire_RollsOverBeforeDeciding(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 17, 45)
	f.seed(1, true, true)

	// Next day: yesterday's confirmations must not suppress the reminder.
	f.clock.Advance(24*time.Hour - 5*time.Hour)
	d := f.svc.Fire(context.Background(), 1, domain.SlotMorningFirst)
	assert.Equal(t, VariantMorningFirst, d.Variant)
	assert.Equal(t, "2025-05-06", f.states.Get(context.Background(), 1).LastResetDate)
}

func TestFire_ConcurrentReplyIsNotLost(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		f := newFixture(t, 2025, time.May, 5, 12, 20)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.svc.Fire(ctx, 1, domain.SlotLunchFirst)
		}()
		go func() {
			defer wg.Done()
			f.svc.HandleText(ctx, 1, "yes")
		}()
		wg.Wait()

		got := f.persisted(t, 1)
		assert.True(t, got.MorningTaken)
		assert.Equal(t, 1, got.LunchReminderCount)
	}
}

func TestFire_UsersAreIndependent(t *testing.T) {
	f := newFixture(t, 2025, time.May, 5, 12, 20)
	f.seed(2, true, false)
	ctx := context.Background()

	f.svc.Fire(ctx, 1, domain.SlotMorningFirst)
	f.svc.Fire(ctx, 2, domain.SlotMorningFirst)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].chatID)
}
