package model

import (
	"errors"
	"strings"
)

// Lesson is the aggregate root of the scheduling domain.  A lesson owns
// four collections of recurrence rules, a set of teacher ids and, through
// the lesson_permissions table, the accounts allowed to see or change it.
// A lesson with no recurrence rules of any kind is legal; it just never
// shows up in schedule resolution.
//
// Fields:
//  ID          – UUID primary key, generated at creation.
//  Title       – required, non-empty.
//  Description – optional free text.
//  Singles     – one-off occurrences.
//  Daily       – daily repeats.
//  Weekly      – weekly repeats.
//  Monthly     – monthly repeats.
//  Teachers    – teacher UUIDs linked via teacher_lesson; empty at creation.
type Lesson struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	Singles     []SingleOccurrence `json:"singles"`
	Daily       []DailyRepeat      `json:"daily"`
	Weekly      []WeeklyRepeat     `json:"weekly"`
	Monthly     []MonthlyRepeat    `json:"monthly"`
	Teachers    []string           `json:"teachers"`
}

// ErrEmptyTitle rejects lessons whose title is missing or blank.
var ErrEmptyTitle = errors.New("lesson title must not be empty")

// Validate checks the base fields and every recurrence rule.  Handlers
// call it before anything reaches the database.
func (l *Lesson) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrEmptyTitle
	}
	for _, s := range l.Singles {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, r := range l.Daily {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, r := range l.Weekly {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, r := range l.Monthly {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
