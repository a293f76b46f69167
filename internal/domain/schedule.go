package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownSlot     = errors.New("unknown slot")
	ErrIncompleteTable = errors.New("incomplete schedule table")
)

// Slot is a named reminder occasion within a day.
type Slot string

const (
	SlotMorningFirst  Slot = "morning_first"
	SlotMorningSecond Slot = "morning_second"
	SlotLunchFirst    Slot = "lunch_first"
	SlotLunchSecond   Slot = "lunch_second"
	SlotFinal         Slot = "final"
)

// Slots lists every slot in firing order.
var Slots = []Slot{SlotMorningFirst, SlotMorningSecond, SlotLunchFirst, SlotLunchSecond, SlotFinal}

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	for _, sl := range Slots {
		if string(sl) == s {
			return sl, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// DayType selects which schedule table applies on a date.
type DayType string

const (
	Weekday DayType = "weekday"
	Weekend DayType = "weekend"
)

// DayTypes lists both day types, weekday first.
var DayTypes = []DayType{Weekday, Weekend}

// Days returns the weekdays a day type covers.
func (d DayType) Days() []time.Weekday {
	if d == Weekend {
		return []time.Weekday{time.Saturday, time.Sunday}
	}
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

// DayTypeFor returns Weekend iff t falls on Saturday or Sunday in loc.
func DayTypeFor(t time.Time, loc *time.Location) DayType {
	switch t.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}

// Event is one reminder firing: a slot at minutes since local midnight.
type Event struct {
	Slot    Slot
	Minutes int
}

// Clock returns the event time as HH:MM.
func (e Event) Clock() string { return FormatMinutes(e.Minutes) }

// Table holds the weekday and weekend reminder events; both are independent.
type Table struct {
	weekday []Event
	weekend []Event
}

// NewTable builds a table from per-slot times. Every slot must be set for both day types.
func NewTable(weekday, weekend map[Slot]int) (Table, error) {
	wd, err := orderedEvents(Weekday, weekday)
	if err != nil {
		return Table{}, err
	}
	we, err := orderedEvents(Weekend, weekend)
	if err != nil {
		return Table{}, err
	}
	return Table{weekday: wd, weekend: we}, nil
}

func orderedEvents(dt DayType, times map[Slot]int) ([]Event, error) {
	out := make([]Event, 0, len(Slots))
	for _, sl := range Slots {
		m, ok := times[sl]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s", ErrIncompleteTable, dt, sl)
		}
		if m < 0 || m > 1439 {
			return nil, fmt.Errorf("%w: %s %s", ErrInvalidTime, dt, sl)
		}
		out = append(out, Event{Slot: sl, Minutes: m})
	}
	for k := range times {
		if _, err := ParseSlot(string(k)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DefaultTable is the deployment schedule: weekend runs one hour after weekday.
func DefaultTable() Table {
	t, err := NewTable(
		map[Slot]int{
			SlotMorningFirst:  12*60 + 20,
			SlotMorningSecond: 12*60 + 40,
			SlotLunchFirst:    15 * 60,
			SlotLunchSecond:   15*60 + 20,
			SlotFinal:         17*60 + 45,
		},
		map[Slot]int{
			SlotMorningFirst:  13*60 + 20,
			SlotMorningSecond: 13*60 + 40,
			SlotLunchFirst:    16 * 60,
			SlotLunchSecond:   16*60 + 20,
			SlotFinal:         18*60 + 45,
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// EventsFor returns the ordered events for a day type. The slice is a copy.
func (t Table) EventsFor(dt DayType) []Event {
	src := t.weekday
	if dt == Weekend {
		src = t.weekend
	}
	out := make([]Event, len(src))
	copy(out, src)
	return out
}

// At returns the time of a slot for a day type.
func (t Table) At(dt DayType, slot Slot) (Event, bool) {
	for _, e := range t.EventsFor(dt) {
		if e.Slot == slot {
			return e, true
		}
	}
	return Event{}, false
}
