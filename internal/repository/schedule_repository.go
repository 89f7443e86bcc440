package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// ScheduleRepo resolves which lessons occur on a given calendar day for a
// given account.  Resolution runs against one transaction snapshot:
// candidate ids are gathered from every recurrence variant, filtered to
// the lessons the account may read, then hydrated one by one.
type ScheduleRepo struct {
	db      *sql.DB
	lessons *LessonRepo
	perms   *PermissionRepo
	sources []candidateSource
}

func NewScheduleRepo(db *sql.DB, lessons *LessonRepo, perms *PermissionRepo) *ScheduleRepo {
	return &ScheduleRepo{
		db:      db,
		lessons: lessons,
		perms:   perms,
		sources: []candidateSource{
			SingleOccurrenceStore{},
			DailyRepeatStore{},
			WeeklyRepeatStore{},
			MonthlyRepeatStore{},
		},
	}
}

// LessonsOn returns the fully hydrated lessons that have at least one
// recurrence rule matching date and are readable by accountID.  Any
// storage error aborts the whole resolution.
//
// Hydration happens per lesson id after the candidate set is known.  That
// is an N+1 access pattern; it is bounded by the caller's day view and
// kept for result-identical simplicity.
func (r *ScheduleRepo) LessonsOn(ctx context.Context, date time.Time, accountID uint64) ([]model.Lesson, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Union of candidate ids across the four variants, insertion-ordered
	// so results are deterministic.
	seen := make(map[string]bool)
	var ids []string
	for _, src := range r.sources {
		matched, err := src.CandidatesOn(ctx, tx, date)
		if err != nil {
			return nil, err
		}
		for _, id := range matched {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	out := []model.Lesson{}
	for _, id := range ids {
		level, err := r.perms.levelFor(ctx, tx, accountID, id)
		if err != nil {
			return nil, err
		}
		if !level.CanRead() {
			continue
		}
		l, err := r.lessons.getTx(ctx, tx, id)
		if err != nil {
			// The id came from this snapshot, so the base row cannot
			// have vanished; treat even ErrNoRows as a storage fault.
			return nil, err
		}
		out = append(out, *l)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}
