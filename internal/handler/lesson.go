package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/cache"
	"github.com/iliyamo/lesson-scheduler/internal/middleware"
	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/queue"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
	"github.com/iliyamo/lesson-scheduler/internal/service"
)

// LessonHandler exposes the lesson aggregate over HTTP.  Every mutation
// is gated on the caller's permission level before the repository is
// touched, invalidates the lesson cache and publishes a change event.
type LessonHandler struct {
	Lessons *repository.LessonRepo
	Perms   *repository.PermissionRepo
	Cache   *cache.LessonCache
	Events  *service.LessonEventPublisher
}

func NewLessonHandler(l *repository.LessonRepo, p *repository.PermissionRepo, c *cache.LessonCache, e *service.LessonEventPublisher) *LessonHandler {
	return &LessonHandler{Lessons: l, Perms: p, Cache: c, Events: e}
}

// ----- DTOs -----
//
// Dates travel as "2006-01-02" strings, times of day as "15:04:05";
// single occurrences use RFC3339 instants, which bind natively.

type singleOccurrenceReq struct {
	OccursAt time.Time `json:"occurs_at"`
}
type dailyRepeatReq struct {
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Time      string  `json:"time"`
}
type weeklyRepeatReq struct {
	WeekDay   int16   `json:"week_day"`
	Every     int32   `json:"every"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Time      string  `json:"time"`
}
type monthlyRepeatReq struct {
	Every     int32   `json:"every"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Time      string  `json:"time"`
}

type createLessonReq struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Singles     []singleOccurrenceReq `json:"singles"`
	Daily       []dailyRepeatReq      `json:"daily"`
	Weekly      []weeklyRepeatReq     `json:"weekly"`
	Monthly     []monthlyRepeatReq    `json:"monthly"`
}

// updateLessonReq distinguishes "absent" from "present" per field: a nil
// collection pointer leaves that recurrence kind untouched, a present
// empty array clears it.  Description uses a RawMessage so an explicit
// JSON null (clear the description) differs from the key being absent.
type updateLessonReq struct {
	Title       *string                `json:"title"`
	Description json.RawMessage        `json:"description"`
	Singles     *[]singleOccurrenceReq `json:"singles"`
	Daily       *[]dailyRepeatReq      `json:"daily"`
	Weekly      *[]weeklyRepeatReq     `json:"weekly"`
	Monthly     *[]monthlyRepeatReq    `json:"monthly"`
}

type shareReq struct {
	AccountID      uint64 `json:"account_id"`
	PermissionType string `json:"permission_type"` // "r" | "rw"
}

// Create inserts a new lesson owned by the caller.
func (h *LessonHandler) Create(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req createLessonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	lesson := model.Lesson{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Singles:     toSingles(req.Singles),
	}
	if lesson.Daily, err = toDaily(req.Daily); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid daily repeat"})
	}
	if lesson.Weekly, err = toWeekly(req.Weekly); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekly repeat"})
	}
	if lesson.Monthly, err = toMonthly(req.Monthly); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid monthly repeat"})
	}
	if err := lesson.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Lessons.Create(ctx, &lesson, accountID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lesson failed"})
	}
	h.publish(ctx, queue.ActionCreated, lesson.ID, accountID, lesson.Title)
	return c.JSON(http.StatusCreated, lesson)
}

// Get returns a fully hydrated lesson to callers with at least read
// access.  Lookup comes first, so a missing lesson is 404 regardless of
// grants; an existing one without a grant is 403.
func (h *LessonHandler) Get(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id := c.Param("id")

	ctx, cancel := reqCtx(c)
	defer cancel()

	lesson, ok := h.Cache.Get(ctx, id)
	if !ok {
		lesson, err = h.Lessons.GetByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lesson not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		h.Cache.Put(ctx, lesson)
	}

	level, err := h.Perms.LevelFor(ctx, accountID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission check failed"})
	}
	if !level.CanRead() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, lesson)
}

// Update applies a partial update: absent fields stay untouched, present
// collections are replaced wholesale.
func (h *LessonHandler) Update(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id := c.Param("id")

	var req updateLessonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd := repository.LessonUpdate{}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": model.ErrEmptyTitle.Error()})
		}
		upd.Title = &t
	}
	if len(req.Description) > 0 {
		var d *string
		if string(req.Description) != "null" {
			if err := json.Unmarshal(req.Description, &d); err != nil || d == nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid description"})
			}
		}
		upd.Description = &d
	}
	if req.Singles != nil {
		s := toSingles(*req.Singles)
		for _, occ := range s {
			if err := occ.Validate(); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}
		upd.Singles = &s
	}
	if req.Daily != nil {
		d, err := toDaily(*req.Daily)
		if err != nil || validateAll(d) != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid daily repeat"})
		}
		upd.Daily = &d
	}
	if req.Weekly != nil {
		w, err := toWeekly(*req.Weekly)
		if err != nil || validateAllWeekly(w) != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekly repeat"})
		}
		upd.Weekly = &w
	}
	if req.Monthly != nil {
		m, err := toMonthly(*req.Monthly)
		if err != nil || validateAllMonthly(m) != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid monthly repeat"})
		}
		upd.Monthly = &m
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if status, msg := requireWriteOn(ctx, h.Perms, h.Lessons, accountID, id); status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	if err := h.Lessons.Update(ctx, id, upd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lesson not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lesson failed"})
	}

	h.Cache.Invalidate(ctx, id)
	title := ""
	if upd.Title != nil {
		title = *upd.Title
	}
	h.publish(ctx, queue.ActionUpdated, id, accountID, title)
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a lesson and everything it owns.  Deleting an id that
// does not exist succeeds without effect.
func (h *LessonHandler) Delete(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id := c.Param("id")

	ctx, cancel := reqCtx(c)
	defer cancel()

	level, err := h.Perms.LevelFor(ctx, accountID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission check failed"})
	}
	if !level.CanWrite() {
		exists, err := h.Lessons.Exists(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if exists {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		// Idempotent: nothing to delete.
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.Lessons.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lesson failed"})
	}
	h.Cache.Invalidate(ctx, id)
	h.publish(ctx, queue.ActionDeleted, id, accountID, "")
	return c.NoContent(http.StatusNoContent)
}

// Share grants another account read or read-write access to a lesson.
// Only read-write holders may share.
func (h *LessonHandler) Share(c echo.Context) error {
	accountID, err := middleware.AccountIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id := c.Param("id")

	var req shareReq
	if err := c.Bind(&req); err != nil || req.AccountID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id required"})
	}
	if req.PermissionType != model.PermissionTypeRead && req.PermissionType != model.PermissionTypeReadWrite {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission_type must be 'r' or 'rw'"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if status, msg := requireWriteOn(ctx, h.Perms, h.Lessons, accountID, id); status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	if err := h.Perms.Grant(ctx, id, req.AccountID, req.PermissionType); err != nil {
		// MySQL error 1452: the grantee account does not exist.
		if strings.Contains(err.Error(), "1452") {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// requireWriteOn answers (0, "") when the caller holds read-write on the
// lesson; otherwise an HTTP status and message: 404 when the lesson does
// not exist, 403 when it does but the caller may not change it.
func requireWriteOn(ctx context.Context, perms *repository.PermissionRepo, lessons *repository.LessonRepo, accountID uint64, lessonID string) (int, string) {
	level, err := perms.LevelFor(ctx, accountID, lessonID)
	if err != nil {
		return http.StatusInternalServerError, "permission check failed"
	}
	if level.CanWrite() {
		return 0, ""
	}
	exists, err := lessons.Exists(ctx, lessonID)
	if err != nil {
		return http.StatusInternalServerError, "query failed"
	}
	if !exists {
		return http.StatusNotFound, "lesson not found"
	}
	return http.StatusForbidden, "forbidden"
}

// publish emits a change event; failures are already logged by the
// publisher and never affect the response.
func (h *LessonHandler) publish(ctx context.Context, action, lessonID string, accountID uint64, title string) {
	_ = h.Events.Publish(ctx, queue.LessonEvent{
		Action:    action,
		LessonID:  lessonID,
		AccountID: accountID,
		Title:     title,
		At:        time.Now().UTC().Format(time.RFC3339),
	})
}

// ----- DTO conversion -----

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toSingles(in []singleOccurrenceReq) []model.SingleOccurrence {
	out := make([]model.SingleOccurrence, 0, len(in))
	for _, s := range in {
		out = append(out, model.SingleOccurrence{OccursAt: s.OccursAt.UTC()})
	}
	return out
}

func toDaily(in []dailyRepeatReq) ([]model.DailyRepeat, error) {
	out := make([]model.DailyRepeat, 0, len(in))
	for _, r := range in {
		start, err := parseDate(r.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDatePtr(r.EndDate)
		if err != nil {
			return nil, err
		}
		out = append(out, model.DailyRepeat{StartDate: start, EndDate: end, ScheduledTime: r.Time})
	}
	return out, nil
}

func toWeekly(in []weeklyRepeatReq) ([]model.WeeklyRepeat, error) {
	out := make([]model.WeeklyRepeat, 0, len(in))
	for _, r := range in {
		start, err := parseDate(r.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDatePtr(r.EndDate)
		if err != nil {
			return nil, err
		}
		out = append(out, model.WeeklyRepeat{
			WeekDay:       model.WeekDay(r.WeekDay),
			Every:         r.Every,
			StartDate:     start,
			EndDate:       end,
			ScheduledTime: r.Time,
		})
	}
	return out, nil
}

func toMonthly(in []monthlyRepeatReq) ([]model.MonthlyRepeat, error) {
	out := make([]model.MonthlyRepeat, 0, len(in))
	for _, r := range in {
		start, err := parseDate(r.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDatePtr(r.EndDate)
		if err != nil {
			return nil, err
		}
		out = append(out, model.MonthlyRepeat{
			Every:         r.Every,
			StartDate:     start,
			EndDate:       end,
			ScheduledTime: r.Time,
		})
	}
	return out, nil
}

func validateAll(rs []model.DailyRepeat) error {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateAllWeekly(rs []model.WeeklyRepeat) error {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateAllMonthly(rs []model.MonthlyRepeat) error {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
