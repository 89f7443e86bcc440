package model

import (
	"errors"
	"time"
)

// WeekDay numbers the days of the week starting at Monday = 1 and ending
// at Sunday = 7.  The numbering matches the values stored in the
// lesson_weekly_repeats table.
type WeekDay int16

const (
	Monday WeekDay = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Valid reports whether the value is one of the seven named days.
func (d WeekDay) Valid() bool { return d >= Monday && d <= Sunday }

// matches reports whether t falls on this week day.  time.Weekday counts
// Sunday as 0, so it is remapped onto the Monday-based numbering here.
func (d WeekDay) matches(t time.Time) bool {
	wd := t.UTC().Weekday()
	if wd == time.Sunday {
		return d == Sunday
	}
	return WeekDay(wd) == d
}

// ErrInvalidRecurrence is returned by the Validate methods below when a
// recurrence rule is malformed (interval below one, unknown week day,
// unparseable time of day, or an end date before the start date).
var ErrInvalidRecurrence = errors.New("invalid recurrence rule")

// SingleOccurrence schedules a lesson exactly once at an absolute instant.
type SingleOccurrence struct {
	OccursAt time.Time `json:"occurs_at"`
}

// OccursOn reports whether the occurrence falls on the given calendar day.
func (s SingleOccurrence) OccursOn(date time.Time) bool {
	return dateOnly(s.OccursAt).Equal(dateOnly(date))
}

func (s SingleOccurrence) Validate() error {
	if s.OccursAt.IsZero() {
		return ErrInvalidRecurrence
	}
	return nil
}

// DailyRepeat schedules a lesson every calendar day between StartDate and
// EndDate inclusive.  A nil EndDate means the repeat never stops.
// ScheduledTime is the time of day in "15:04:05" form; it does not take
// part in date matching.
type DailyRepeat struct {
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ScheduledTime string     `json:"time"`
}

func (r DailyRepeat) OccursOn(date time.Time) bool {
	return inRange(r.StartDate, r.EndDate, date)
}

func (r DailyRepeat) Validate() error {
	if !validClock(r.ScheduledTime) || !validRange(r.StartDate, r.EndDate) {
		return ErrInvalidRecurrence
	}
	return nil
}

// WeeklyRepeat schedules a lesson on one week day, every Every weeks,
// anchored at StartDate.  A repeat with Every = 2 starting on a Monday
// occurs on that Monday and then on every second Monday after it.
type WeeklyRepeat struct {
	WeekDay       WeekDay    `json:"week_day"`
	Every         int32      `json:"every"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ScheduledTime string     `json:"time"`
}

func (r WeeklyRepeat) OccursOn(date time.Time) bool {
	if !inRange(r.StartDate, r.EndDate, date) || !r.WeekDay.matches(date) {
		return false
	}
	days := int(dateOnly(date).Sub(dateOnly(r.StartDate)).Hours() / 24)
	return (days/7)%int(r.Every) == 0
}

func (r WeeklyRepeat) Validate() error {
	if r.Every < 1 || !r.WeekDay.Valid() || !validClock(r.ScheduledTime) || !validRange(r.StartDate, r.EndDate) {
		return ErrInvalidRecurrence
	}
	return nil
}

// MonthlyRepeat schedules a lesson on StartDate's day of month, every
// Every months.  Months that do not contain the anchor day (day 31 in
// February, say) are skipped: the lesson does not occur that month.
type MonthlyRepeat struct {
	Every         int32      `json:"every"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ScheduledTime string     `json:"time"`
}

func (r MonthlyRepeat) OccursOn(date time.Time) bool {
	if !inRange(r.StartDate, r.EndDate, date) {
		return false
	}
	d := dateOnly(date)
	s := dateOnly(r.StartDate)
	if d.Day() != s.Day() {
		return false
	}
	months := (d.Year()-s.Year())*12 + int(d.Month()) - int(s.Month())
	return months%int(r.Every) == 0
}

func (r MonthlyRepeat) Validate() error {
	if r.Every < 1 || !validClock(r.ScheduledTime) || !validRange(r.StartDate, r.EndDate) {
		return ErrInvalidRecurrence
	}
	return nil
}

// dateOnly truncates t to midnight UTC so two instants on the same
// calendar day compare equal.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inRange reports start <= date <= end with a nil end meaning unbounded.
func inRange(start time.Time, end *time.Time, date time.Time) bool {
	d := dateOnly(date)
	if d.Before(dateOnly(start)) {
		return false
	}
	if end != nil && d.After(dateOnly(*end)) {
		return false
	}
	return true
}

func validRange(start time.Time, end *time.Time) bool {
	if start.IsZero() {
		return false
	}
	return end == nil || !dateOnly(*end).Before(dateOnly(start))
}

func validClock(s string) bool {
	if _, err := time.Parse("15:04:05", s); err == nil {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
