package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

func newMockRepo(t *testing.T) (*LessonRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLessonRepo(db, NewPermissionRepo(db)), mock
}

func q(query string) string { return regexp.QuoteMeta(query) }

func TestLessonRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	lesson := model.Lesson{
		Title: "Algebra",
		Singles: []model.SingleOccurrence{
			{OccursAt: time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)},
		},
		Weekly: []model.WeeklyRepeat{
			{WeekDay: model.Monday, Every: 2, StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), ScheduledTime: "10:00:00"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO lessons (id, title, description) VALUES (?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "Algebra", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO lesson_single_occurrences (lesson_id, occurs_at) VALUES (?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO lesson_weekly_repeats (lesson_id, week_day, every, start_date, end_date, scheduled_time) VALUES (?, ?, ?, ?, ?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO lesson_permissions (lesson_id, account_id, permission_type) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE permission_type = VALUES(permission_type)")).
		WithArgs(sqlmock.AnyArg(), uint64(7), model.PermissionTypeReadWrite).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &lesson, 7))
	assert.NotEmpty(t, lesson.ID, "id is generated on create")
	assert.NotNil(t, lesson.Teachers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoCreateRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	boom := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO lessons")).WillReturnError(boom)
	mock.ExpectRollback()

	lesson := model.Lesson{Title: "Algebra"}
	err := repo.Create(context.Background(), &lesson, 7)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := "8b2e1f34-1111-2222-3333-444455556666"
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT title, description FROM lessons WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"title", "description"}).AddRow("Algebra", "intro course"))
	mock.ExpectQuery(q("SELECT occurs_at FROM lesson_single_occurrences WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"occurs_at"}))
	mock.ExpectQuery(q("SELECT start_date, end_date, scheduled_time FROM lesson_daily_repeats WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"start_date", "end_date", "scheduled_time"}))
	mock.ExpectQuery(q("SELECT week_day, every, start_date, end_date, scheduled_time FROM lesson_weekly_repeats WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"week_day", "every", "start_date", "end_date", "scheduled_time"}).
			AddRow(int16(1), int32(2), start, nil, "10:00:00"))
	mock.ExpectQuery(q("SELECT every, start_date, end_date, scheduled_time FROM lesson_monthly_repeats WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"every", "start_date", "end_date", "scheduled_time"}))
	mock.ExpectQuery(q("SELECT teacher_id FROM teacher_lesson WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id"}).AddRow("t-1"))
	mock.ExpectCommit()

	l, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", l.Title)
	require.NotNil(t, l.Description)
	assert.Equal(t, "intro course", *l.Description)
	require.Len(t, l.Weekly, 1)
	assert.Equal(t, model.Monday, l.Weekly[0].WeekDay)
	assert.Nil(t, l.Weekly[0].EndDate)
	assert.Equal(t, []string{"t-1"}, l.Teachers)
	assert.Empty(t, l.Singles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoGetByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT title, description FROM lessons WHERE id = ?")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoUpdateReplacesCollection(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := "les-1"
	title := "Algebra II"
	weekly := []model.WeeklyRepeat{
		{WeekDay: model.Friday, Every: 1, StartDate: time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC), ScheduledTime: "09:00:00"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ? FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(q("UPDATE lessons SET title = ? WHERE id = ?")).
		WithArgs(title, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM lesson_weekly_repeats WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("INSERT INTO lesson_weekly_repeats")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), id, LessonUpdate{Title: &title, Weekly: &weekly})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoUpdateEmptySliceClears(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := "les-1"
	none := []model.SingleOccurrence{}

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ? FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(q("DELETE FROM lesson_single_occurrences WHERE lesson_id = ?")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	// No insert follows: the empty replacement set clears the collection.
	mock.ExpectCommit()

	err := repo.Update(context.Background(), id, LessonUpdate{Singles: &none})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoUpdateClearsDescription(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := "les-1"
	var desc *string

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ? FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(q("UPDATE lessons SET description = ? WHERE id = ?")).
		WithArgs(nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), id, LessonUpdate{Description: &desc})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoUpdateMissingLesson(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ? FOR UPDATE")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	title := "x"
	err := repo.Update(context.Background(), "nope", LessonUpdate{Title: &title})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoDeleteIdempotent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(q("DELETE FROM lessons WHERE id = ?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "gone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepoExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ?")).
		WithArgs("les-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(q("SELECT 1 FROM lessons WHERE id = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := repo.Exists(context.Background(), "les-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
