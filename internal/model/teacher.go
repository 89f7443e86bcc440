package model

import "time"

// Teacher mirrors the 'teachers' table.  Teachers are linked to lessons
// through teacher_lesson rows; a lesson may have any number of teachers.
type Teacher struct {
	ID        string    `json:"id"`   // teachers.id (UUID)
	Name      string    `json:"name"` // teachers.name
	CreatedAt time.Time `json:"-"`
}
