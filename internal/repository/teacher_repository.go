package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// TeacherRepo persists teacher profiles and their links to lessons.
type TeacherRepo struct{ DB *sql.DB }

func NewTeacherRepo(db *sql.DB) *TeacherRepo { return &TeacherRepo{DB: db} }

// Create inserts a teacher profile with a generated id.
func (r *TeacherRepo) Create(ctx context.Context, name string) (model.Teacher, error) {
	t := model.Teacher{ID: uuid.NewString(), Name: name}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO teachers (id, name) VALUES (?, ?)", t.ID, t.Name)
	return t, err
}

// GetByID fetches a teacher by id.
func (r *TeacherRepo) GetByID(ctx context.Context, id string) (model.Teacher, error) {
	var t model.Teacher
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM teachers WHERE id = ? LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	return t, err
}

// AssignToLesson links a teacher to a lesson.  Linking twice is a no-op;
// a missing teacher or lesson surfaces as sql.ErrNoRows so handlers can
// answer 404.
func (r *TeacherRepo) AssignToLesson(ctx context.Context, lessonID, teacherID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO teacher_lesson (lesson_id, teacher_id) VALUES (?, ?)",
		lessonID, teacherID)
	if err != nil {
		// MySQL error 1452: foreign key constraint fails, i.e. the lesson
		// or the teacher does not exist.
		if strings.Contains(err.Error(), "1452") {
			return sql.ErrNoRows
		}
		return err
	}
	return nil
}

// RemoveFromLesson unlinks a teacher from a lesson.  Removing a link that
// does not exist is not an error.
func (r *TeacherRepo) RemoveFromLesson(ctx context.Context, lessonID, teacherID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM teacher_lesson WHERE lesson_id = ? AND teacher_id = ?",
		lessonID, teacherID)
	return err
}
