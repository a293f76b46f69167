package domain

import "time"

// DateLayout is the ISO calendar date used for LastResetDate.
const DateLayout = "2006-01-02"

// Dose names a confirmable daily dose.
type Dose string

const (
	DoseMorning Dose = "morning"
	DoseLunch   Dose = "lunch"
)

// DoseState is a user's confirmation and reminder-count status for one calendar day.
type DoseState struct {
	MorningTaken         bool
	LunchTaken           bool
	MorningReminderCount int    // 0..2
	LunchReminderCount   int    // 0..1
	LastResetDate        string // YYYY-MM-DD in the deployment zone
}

// NewDoseState returns a zero state bound to the given day.
func NewDoseState(today string) DoseState {
	return DoseState{LastResetDate: today}
}

// DateOf returns the calendar date of t in loc as YYYY-MM-DD.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// RolloverIfNewDay resets flags and counters when today differs from LastResetDate.
// It reports whether a reset happened.
func (s *DoseState) RolloverIfNewDay(today string) bool {
	if s.LastResetDate == today {
		return false
	}
	s.Clear()
	s.LastResetDate = today
	return true
}

// Clear zeroes flags and counters, keeping the date.
func (s *DoseState) Clear() {
	s.MorningTaken = false
	s.LunchTaken = false
	s.MorningReminderCount = 0
	s.LunchReminderCount = 0
}

// AllTaken reports whether both doses are confirmed.
func (s DoseState) AllTaken() bool {
	return s.MorningTaken && s.LunchTaken
}

// Missing lists the doses not yet confirmed, morning first.
func (s DoseState) Missing() []Dose {
	var out []Dose
	if !s.MorningTaken {
		out = append(out, DoseMorning)
	}
	if !s.LunchTaken {
		out = append(out, DoseLunch)
	}
	return out
}

// Confirm marks the next pending dose as taken, morning before lunch.
// ok is false when both doses were already taken.
func (s *DoseState) Confirm() (d Dose, ok bool) {
	switch {
	case !s.MorningTaken:
		s.MorningTaken = true
		return DoseMorning, true
	case !s.LunchTaken:
		s.LunchTaken = true
		return DoseLunch, true
	default:
		return "", false
	}
}
