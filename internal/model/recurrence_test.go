package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestSingleOccurrenceOccursOn(t *testing.T) {
	s := SingleOccurrence{OccursAt: time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)}

	assert.True(t, s.OccursOn(day(2024, time.March, 10)), "same calendar day, any time")
	assert.True(t, s.OccursOn(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)))
	assert.False(t, s.OccursOn(day(2024, time.March, 11)))
	assert.False(t, s.OccursOn(day(2024, time.March, 9)))
}

func TestDailyRepeatOccursOn(t *testing.T) {
	bounded := DailyRepeat{
		StartDate:     day(2024, time.January, 10),
		EndDate:       datePtr(day(2024, time.January, 20)),
		ScheduledTime: "09:00:00",
	}
	assert.True(t, bounded.OccursOn(day(2024, time.January, 10)), "start date inclusive")
	assert.True(t, bounded.OccursOn(day(2024, time.January, 15)))
	assert.True(t, bounded.OccursOn(day(2024, time.January, 20)), "end date inclusive")
	assert.False(t, bounded.OccursOn(day(2024, time.January, 9)))
	assert.False(t, bounded.OccursOn(day(2024, time.January, 21)))

	open := DailyRepeat{StartDate: day(2024, time.January, 10), ScheduledTime: "09:00:00"}
	assert.True(t, open.OccursOn(day(2030, time.June, 1)), "nil end date never stops")
}

func TestWeeklyRepeatOccursOn(t *testing.T) {
	// 2024-01-01 is a Monday.
	r := WeeklyRepeat{
		WeekDay:       Monday,
		Every:         2,
		StartDate:     day(2024, time.January, 1),
		ScheduledTime: "10:00",
	}

	assert.True(t, r.OccursOn(day(2024, time.January, 1)), "anchor week")
	assert.False(t, r.OccursOn(day(2024, time.January, 8)), "off week")
	assert.True(t, r.OccursOn(day(2024, time.January, 15)))
	assert.False(t, r.OccursOn(day(2024, time.January, 22)))
	assert.True(t, r.OccursOn(day(2024, time.January, 29)))

	assert.False(t, r.OccursOn(day(2024, time.January, 16)), "right week, wrong day")
	assert.False(t, r.OccursOn(day(2023, time.December, 25)), "before start")
}

func TestWeeklyRepeatSundayMapping(t *testing.T) {
	// time.Weekday counts Sunday as 0; the rule numbering puts it at 7.
	// 2024-01-07 is a Sunday.
	r := WeeklyRepeat{
		WeekDay:       Sunday,
		Every:         1,
		StartDate:     day(2024, time.January, 7),
		ScheduledTime: "10:00",
	}
	assert.True(t, r.OccursOn(day(2024, time.January, 7)))
	assert.True(t, r.OccursOn(day(2024, time.January, 14)))
	assert.False(t, r.OccursOn(day(2024, time.January, 8)), "Monday")
}

func TestMonthlyRepeatOccursOn(t *testing.T) {
	r := MonthlyRepeat{
		Every:         1,
		StartDate:     day(2024, time.January, 31),
		ScheduledTime: "12:00:00",
	}

	assert.True(t, r.OccursOn(day(2024, time.January, 31)))
	assert.True(t, r.OccursOn(day(2024, time.March, 31)))
	assert.True(t, r.OccursOn(day(2024, time.May, 31)))
	// February has no 31st; the occurrence is skipped, not moved.
	assert.False(t, r.OccursOn(day(2024, time.February, 29)))
	assert.False(t, r.OccursOn(day(2024, time.April, 30)))
}

func TestMonthlyRepeatInterval(t *testing.T) {
	r := MonthlyRepeat{
		Every:         2,
		StartDate:     day(2024, time.January, 15),
		ScheduledTime: "12:00:00",
	}
	assert.True(t, r.OccursOn(day(2024, time.January, 15)))
	assert.False(t, r.OccursOn(day(2024, time.February, 15)))
	assert.True(t, r.OccursOn(day(2024, time.March, 15)))
	assert.True(t, r.OccursOn(day(2025, time.January, 15)), "interval spans years")
	assert.False(t, r.OccursOn(day(2025, time.February, 15)))
}

func TestRecurrenceValidate(t *testing.T) {
	start := day(2024, time.January, 1)

	valid := []error{
		SingleOccurrence{OccursAt: start}.Validate(),
		DailyRepeat{StartDate: start, ScheduledTime: "09:00:00"}.Validate(),
		DailyRepeat{StartDate: start, ScheduledTime: "09:00"}.Validate(),
		WeeklyRepeat{WeekDay: Friday, Every: 1, StartDate: start, ScheduledTime: "18:30"}.Validate(),
		MonthlyRepeat{Every: 3, StartDate: start, ScheduledTime: "08:00:00"}.Validate(),
	}
	for _, err := range valid {
		require.NoError(t, err)
	}

	invalid := []error{
		SingleOccurrence{}.Validate(),
		DailyRepeat{StartDate: start, ScheduledTime: "25:99"}.Validate(),
		DailyRepeat{ScheduledTime: "09:00"}.Validate(),
		DailyRepeat{StartDate: start, EndDate: datePtr(day(2023, time.December, 31)), ScheduledTime: "09:00"}.Validate(),
		WeeklyRepeat{WeekDay: Monday, Every: 0, StartDate: start, ScheduledTime: "09:00"}.Validate(),
		WeeklyRepeat{WeekDay: WeekDay(8), Every: 1, StartDate: start, ScheduledTime: "09:00"}.Validate(),
		MonthlyRepeat{Every: 0, StartDate: start, ScheduledTime: "09:00"}.Validate(),
	}
	for _, err := range invalid {
		assert.ErrorIs(t, err, ErrInvalidRecurrence)
	}
}

func TestLessonValidate(t *testing.T) {
	l := Lesson{Title: "Algebra", Weekly: []WeeklyRepeat{
		{WeekDay: Tuesday, Every: 1, StartDate: day(2024, time.January, 2), ScheduledTime: "10:00"},
	}}
	require.NoError(t, l.Validate())

	empty := Lesson{}
	assert.ErrorIs(t, empty.Validate(), ErrEmptyTitle)

	l.Weekly[0].Every = 0
	assert.ErrorIs(t, l.Validate(), ErrInvalidRecurrence)
}
