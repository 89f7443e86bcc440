package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/cache"
	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
)

// TeacherHandler manages teacher profiles and their assignment to
// lessons.  Assignment mutates the lesson aggregate, so it is gated on
// read-write access and invalidates the lesson cache.
type TeacherHandler struct {
	Teachers *repository.TeacherRepo
	Lessons  *repository.LessonRepo
	Perms    *repository.PermissionRepo
	Cache    *cache.LessonCache
}

func NewTeacherHandler(t *repository.TeacherRepo, l *repository.LessonRepo, p *repository.PermissionRepo, c *cache.LessonCache) *TeacherHandler {
	return &TeacherHandler{Teachers: t, Lessons: l, Perms: p, Cache: c}
}

type createTeacherReq struct {
	Name string `json:"name"`
}

// Create registers a teacher profile.
func (h *TeacherHandler) Create(c echo.Context) error {
	if _, err := middleware.AccountIDFrom(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req createTeacherReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Teachers.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create teacher failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Get returns a teacher profile.
func (h *TeacherHandler) Get(c echo.Context) error {
	if _, err := middleware.AccountIDFrom(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Teachers.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "teacher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Assign links a teacher to a lesson the caller may modify.
//
// PUT /v1/lessons/:id/teachers/:teacherID
func (h *TeacherHandler) Assign(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	lessonID, teacherID := c.Param("id"), c.Param("teacherID")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if status, msg := requireWriteOn(ctx, h.Perms, h.Lessons, accountID, lessonID); status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	if err := h.Teachers.AssignToLesson(ctx, lessonID, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "teacher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
	}
	h.Cache.Invalidate(ctx, lessonID)
	return c.NoContent(http.StatusNoContent)
}

// Unassign removes a teacher from a lesson.  Removing an absent link
// succeeds without effect.
//
// DELETE /v1/lessons/:id/teachers/:teacherID
func (h *TeacherHandler) Unassign(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	lessonID, teacherID := c.Param("id"), c.Param("teacherID")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if status, msg := requireWriteOn(ctx, h.Perms, h.Lessons, accountID, lessonID); status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	if err := h.Teachers.RemoveFromLesson(ctx, lessonID, teacherID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unassign failed"})
	}
	h.Cache.Invalidate(ctx, lessonID)
	return c.NoContent(http.StatusNoContent)
}
