package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// querier is the subset of *sql.DB and *sql.Tx the stores run against.
// Every recurrence operation invoked by the lesson aggregate happens
// inside the aggregate's transaction, so the stores never open their own.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// candidateSource is the part of the store contract the schedule resolver
// iterates over: report the ids of lessons with at least one rule of this
// variant matching the given day.  Each implementation narrows rows with a
// coarse SQL range filter and then applies the variant's pure OccursOn
// predicate.
type candidateSource interface {
	CandidatesOn(ctx context.Context, q querier, date time.Time) ([]string, error)
}

// bulkInsert builds a single multi-row INSERT from per-row placeholder
// groups.  Callers guarantee rows is non-empty.
func bulkInsert(ctx context.Context, q querier, table, columns string, rows int, group string, args []any) error {
	values := make([]string, rows)
	for i := range values {
		values[i] = group
	}
	query := "INSERT INTO " + table + " (" + columns + ") VALUES " + strings.Join(values, ",")
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// SingleOccurrenceStore persists one-off occurrences.
type SingleOccurrenceStore struct{}

func (SingleOccurrenceStore) ListForLesson(ctx context.Context, q querier, lessonID string) ([]model.SingleOccurrence, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT occurs_at FROM lesson_single_occurrences WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SingleOccurrence{}
	for rows.Next() {
		var s model.SingleOccurrence
		if err := rows.Scan(&s.OccursAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (SingleOccurrenceStore) InsertBatch(ctx context.Context, q querier, singles []model.SingleOccurrence, lessonID string) error {
	if len(singles) == 0 {
		return nil
	}
	args := make([]any, 0, len(singles)*2)
	for _, s := range singles {
		args = append(args, lessonID, s.OccursAt.UTC())
	}
	return bulkInsert(ctx, q, "lesson_single_occurrences", "lesson_id, occurs_at", len(singles), "(?, ?)", args)
}

func (SingleOccurrenceStore) DeleteForLesson(ctx context.Context, q querier, lessonID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM lesson_single_occurrences WHERE lesson_id = ?", lessonID)
	return err
}

func (SingleOccurrenceStore) CandidatesOn(ctx context.Context, q querier, date time.Time) ([]string, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	rows, err := q.QueryContext(ctx,
		"SELECT lesson_id, occurs_at FROM lesson_single_occurrences WHERE occurs_at >= ? AND occurs_at < ?",
		day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		var s model.SingleOccurrence
		if err := rows.Scan(&id, &s.OccursAt); err != nil {
			return nil, err
		}
		if s.OccursOn(date) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// DailyRepeatStore persists daily repeats.
type DailyRepeatStore struct{}

func (DailyRepeatStore) ListForLesson(ctx context.Context, q querier, lessonID string) ([]model.DailyRepeat, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT start_date, end_date, scheduled_time FROM lesson_daily_repeats WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.DailyRepeat{}
	for rows.Next() {
		var r model.DailyRepeat
		var end sql.NullTime
		if err := rows.Scan(&r.StartDate, &end, &r.ScheduledTime); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (DailyRepeatStore) InsertBatch(ctx context.Context, q querier, repeats []model.DailyRepeat, lessonID string) error {
	if len(repeats) == 0 {
		return nil
	}
	args := make([]any, 0, len(repeats)*4)
	for _, r := range repeats {
		args = append(args, lessonID, r.StartDate.UTC(), nullableDate(r.EndDate), r.ScheduledTime)
	}
	return bulkInsert(ctx, q, "lesson_daily_repeats", "lesson_id, start_date, end_date, scheduled_time", len(repeats), "(?, ?, ?, ?)", args)
}

func (DailyRepeatStore) DeleteForLesson(ctx context.Context, q querier, lessonID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM lesson_daily_repeats WHERE lesson_id = ?", lessonID)
	return err
}

func (DailyRepeatStore) CandidatesOn(ctx context.Context, q querier, date time.Time) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT lesson_id, start_date, end_date FROM lesson_daily_repeats WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
		date.UTC(), date.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		var r model.DailyRepeat
		var end sql.NullTime
		if err := rows.Scan(&id, &r.StartDate, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		if r.OccursOn(date) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// WeeklyRepeatStore persists weekly repeats.
type WeeklyRepeatStore struct{}

func (WeeklyRepeatStore) ListForLesson(ctx context.Context, q querier, lessonID string) ([]model.WeeklyRepeat, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT week_day, every, start_date, end_date, scheduled_time FROM lesson_weekly_repeats WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WeeklyRepeat{}
	for rows.Next() {
		var r model.WeeklyRepeat
		var end sql.NullTime
		if err := rows.Scan(&r.WeekDay, &r.Every, &r.StartDate, &end, &r.ScheduledTime); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (WeeklyRepeatStore) InsertBatch(ctx context.Context, q querier, repeats []model.WeeklyRepeat, lessonID string) error {
	if len(repeats) == 0 {
		return nil
	}
	args := make([]any, 0, len(repeats)*6)
	for _, r := range repeats {
		args = append(args, lessonID, int16(r.WeekDay), r.Every, r.StartDate.UTC(), nullableDate(r.EndDate), r.ScheduledTime)
	}
	return bulkInsert(ctx, q, "lesson_weekly_repeats", "lesson_id, week_day, every, start_date, end_date, scheduled_time", len(repeats), "(?, ?, ?, ?, ?, ?)", args)
}

func (WeeklyRepeatStore) DeleteForLesson(ctx context.Context, q querier, lessonID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM lesson_weekly_repeats WHERE lesson_id = ?", lessonID)
	return err
}

func (WeeklyRepeatStore) CandidatesOn(ctx context.Context, q querier, date time.Time) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT lesson_id, week_day, every, start_date, end_date FROM lesson_weekly_repeats WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
		date.UTC(), date.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		var r model.WeeklyRepeat
		var end sql.NullTime
		if err := rows.Scan(&id, &r.WeekDay, &r.Every, &r.StartDate, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		if r.OccursOn(date) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// MonthlyRepeatStore persists monthly repeats.
type MonthlyRepeatStore struct{}

func (MonthlyRepeatStore) ListForLesson(ctx context.Context, q querier, lessonID string) ([]model.MonthlyRepeat, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT every, start_date, end_date, scheduled_time FROM lesson_monthly_repeats WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MonthlyRepeat{}
	for rows.Next() {
		var r model.MonthlyRepeat
		var end sql.NullTime
		if err := rows.Scan(&r.Every, &r.StartDate, &end, &r.ScheduledTime); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (MonthlyRepeatStore) InsertBatch(ctx context.Context, q querier, repeats []model.MonthlyRepeat, lessonID string) error {
	if len(repeats) == 0 {
		return nil
	}
	args := make([]any, 0, len(repeats)*5)
	for _, r := range repeats {
		args = append(args, lessonID, r.Every, r.StartDate.UTC(), nullableDate(r.EndDate), r.ScheduledTime)
	}
	return bulkInsert(ctx, q, "lesson_monthly_repeats", "lesson_id, every, start_date, end_date, scheduled_time", len(repeats), "(?, ?, ?, ?, ?)", args)
}

func (MonthlyRepeatStore) DeleteForLesson(ctx context.Context, q querier, lessonID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM lesson_monthly_repeats WHERE lesson_id = ?", lessonID)
	return err
}

func (MonthlyRepeatStore) CandidatesOn(ctx context.Context, q querier, date time.Time) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT lesson_id, every, start_date, end_date FROM lesson_monthly_repeats WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
		date.UTC(), date.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		var r model.MonthlyRepeat
		var end sql.NullTime
		if err := rows.Scan(&id, &r.Every, &r.StartDate, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			e := end.Time
			r.EndDate = &e
		}
		if r.OccursOn(date) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// nullableDate keeps NULL end dates NULL instead of binding a zero time.
func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
