package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
)

// ScheduleHandler answers "what happens on this day" queries.
type ScheduleHandler struct {
	Schedule *repository.ScheduleRepo
}

func NewScheduleHandler(s *repository.ScheduleRepo) *ScheduleHandler {
	return &ScheduleHandler{Schedule: s}
}

// ForDate returns every lesson readable by the caller with at least one
// recurrence rule matching the requested date.
//
// GET /v1/schedule?date=2006-01-02
func (h *ScheduleHandler) ForDate(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	lessons, err := h.Schedule.LessonsOn(ctx, date, accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date.Format("2006-01-02"), "lessons": lessons})
}
