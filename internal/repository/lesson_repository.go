package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// LessonRepo is the aggregate manager for lessons.  Every mutating
// operation runs inside one transaction spanning the base row, the four
// recurrence stores and the permission grant, so no partially written
// lesson is ever visible outside the transaction.  Reads hydrate the full
// aggregate against a single transaction snapshot for the same reason.
type LessonRepo struct {
	db      *sql.DB
	singles SingleOccurrenceStore
	daily   DailyRepeatStore
	weekly  WeeklyRepeatStore
	monthly MonthlyRepeatStore
	perms   *PermissionRepo
}

// NewLessonRepo returns a LessonRepo bound to the given database handle.
func NewLessonRepo(db *sql.DB, perms *PermissionRepo) *LessonRepo {
	return &LessonRepo{db: db, perms: perms}
}

// Create inserts the lesson, all of its recurrence rules and a read-write
// grant for the owner in one transaction.  The lesson id is generated
// here; the teacher set starts empty.  On any failure nothing is
// persisted.
func (r *LessonRepo) Create(ctx context.Context, l *model.Lesson, ownerID uint64) error {
	l.ID = uuid.NewString()
	l.Teachers = []string{}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO lessons (id, title, description) VALUES (?, ?, ?)",
		l.ID, l.Title, l.Description); err != nil {
		return err
	}
	if err := r.singles.InsertBatch(ctx, tx, l.Singles, l.ID); err != nil {
		return err
	}
	if err := r.daily.InsertBatch(ctx, tx, l.Daily, l.ID); err != nil {
		return err
	}
	if err := r.weekly.InsertBatch(ctx, tx, l.Weekly, l.ID); err != nil {
		return err
	}
	if err := r.monthly.InsertBatch(ctx, tx, l.Monthly, l.ID); err != nil {
		return err
	}
	if err := r.perms.GrantTx(ctx, tx, l.ID, ownerID, model.PermissionTypeReadWrite); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns the fully hydrated lesson or sql.ErrNoRows when no base
// row exists.
func (r *LessonRepo) GetByID(ctx context.Context, id string) (*model.Lesson, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	l, err := r.getTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

// getTx hydrates a lesson against the caller's transaction snapshot.
func (r *LessonRepo) getTx(ctx context.Context, q querier, id string) (*model.Lesson, error) {
	l := &model.Lesson{ID: id}
	var desc sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT title, description FROM lessons WHERE id = ?", id).Scan(&l.Title, &desc)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		l.Description = &d
	}
	if l.Singles, err = r.singles.ListForLesson(ctx, q, id); err != nil {
		return nil, err
	}
	if l.Daily, err = r.daily.ListForLesson(ctx, q, id); err != nil {
		return nil, err
	}
	if l.Weekly, err = r.weekly.ListForLesson(ctx, q, id); err != nil {
		return nil, err
	}
	if l.Monthly, err = r.monthly.ListForLesson(ctx, q, id); err != nil {
		return nil, err
	}
	if l.Teachers, err = teachersForLesson(ctx, q, id); err != nil {
		return nil, err
	}
	return l, nil
}

func teachersForLesson(ctx context.Context, q querier, lessonID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT teacher_id FROM teacher_lesson WHERE lesson_id = ?", lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LessonUpdate carries the optional fields of an update.  A nil field
// means "leave unchanged".  A non-nil collection pointer means "replace
// entirely", so pointing at an empty slice clears that recurrence kind.
// Description is doubly optional: the outer pointer distinguishes
// absent from present, the inner one keeps NULL expressible.
type LessonUpdate struct {
	Title       *string
	Description **string
	Singles     *[]model.SingleOccurrence
	Daily       *[]model.DailyRepeat
	Weekly      *[]model.WeeklyRepeat
	Monthly     *[]model.MonthlyRepeat
}

// Update applies the supplied fields inside one transaction.  Each present
// recurrence collection is replaced wholesale: delete all rows of that
// variant, then bulk-insert the new set.  Returns sql.ErrNoRows when the
// lesson does not exist.  Concurrent updates to the same lesson are
// last-writer-wins per collection; there is no conflict detection.
func (r *LessonRepo) Update(ctx context.Context, id string, u LessonUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Locking the base row serializes the replace against concurrent
	// updates and doubles as the existence check.
	var one int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM lessons WHERE id = ? FOR UPDATE", id).Scan(&one); err != nil {
		return err
	}

	if u.Title != nil || u.Description != nil {
		setters := make([]string, 0, 2)
		args := make([]any, 0, 3)
		if u.Title != nil {
			setters = append(setters, "title = ?")
			args = append(args, *u.Title)
		}
		if u.Description != nil {
			setters = append(setters, "description = ?")
			if *u.Description == nil {
				args = append(args, nil)
			} else {
				args = append(args, **u.Description)
			}
		}
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE lessons SET "+strings.Join(setters, ", ")+" WHERE id = ?", args...); err != nil {
			return err
		}
	}

	if u.Singles != nil {
		if err := r.singles.DeleteForLesson(ctx, tx, id); err != nil {
			return err
		}
		if err := r.singles.InsertBatch(ctx, tx, *u.Singles, id); err != nil {
			return err
		}
	}
	if u.Daily != nil {
		if err := r.daily.DeleteForLesson(ctx, tx, id); err != nil {
			return err
		}
		if err := r.daily.InsertBatch(ctx, tx, *u.Daily, id); err != nil {
			return err
		}
	}
	if u.Weekly != nil {
		if err := r.weekly.DeleteForLesson(ctx, tx, id); err != nil {
			return err
		}
		if err := r.weekly.InsertBatch(ctx, tx, *u.Weekly, id); err != nil {
			return err
		}
	}
	if u.Monthly != nil {
		if err := r.monthly.DeleteForLesson(ctx, tx, id); err != nil {
			return err
		}
		if err := r.monthly.InsertBatch(ctx, tx, *u.Monthly, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Exists reports whether a base row exists for the id.  Handlers use it
// to tell "no such lesson" apart from "no permission" on failure paths.
func (r *LessonRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM lessons WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the base row; recurrence rows, teacher links and
// permission grants go with it through ON DELETE CASCADE.  Deleting an
// absent id is not an error.
func (r *LessonRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = ?", id)
	return err
}
