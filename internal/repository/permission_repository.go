package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// PermissionRepo resolves and records account-to-lesson access levels
// from the lesson_permissions table.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// LevelFor computes the caller's access level on a lesson.  No grant row
// means PermissionNone; that is an answer, not an error.
func (r *PermissionRepo) LevelFor(ctx context.Context, accountID uint64, lessonID string) (model.PermissionLevel, error) {
	return r.levelFor(ctx, r.DB, accountID, lessonID)
}

func (r *PermissionRepo) levelFor(ctx context.Context, q querier, accountID uint64, lessonID string) (model.PermissionLevel, error) {
	var ptype string
	err := q.QueryRowContext(ctx,
		"SELECT permission_type FROM lesson_permissions WHERE lesson_id = ? AND account_id = ?",
		lessonID, accountID).Scan(&ptype)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PermissionNone, nil
	}
	if err != nil {
		return model.PermissionNone, err
	}
	return model.ParsePermissionType(ptype), nil
}

// Grant records a permission level for an account on a lesson, upgrading
// or downgrading an existing grant in place.  At most one grant row
// exists per (lesson, account) pair.
func (r *PermissionRepo) Grant(ctx context.Context, lessonID string, accountID uint64, permissionType string) error {
	return r.grant(ctx, r.DB, lessonID, accountID, permissionType)
}

// GrantTx is Grant inside the caller's transaction; the lesson aggregate
// uses it to write the creator's read-write grant atomically with the
// lesson itself.
func (r *PermissionRepo) GrantTx(ctx context.Context, tx *sql.Tx, lessonID string, accountID uint64, permissionType string) error {
	return r.grant(ctx, tx, lessonID, accountID, permissionType)
}

func (r *PermissionRepo) grant(ctx context.Context, q querier, lessonID string, accountID uint64, permissionType string) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO lesson_permissions (lesson_id, account_id, permission_type) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE permission_type = VALUES(permission_type)",
		lessonID, accountID, permissionType)
	return err
}
