// Package router wires the HTTP surface: which paths exist, which
// handlers serve them and which middleware guards them.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/lesson-scheduler/internal/handler"
	"github.com/iliyamo/lesson-scheduler/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Lesson   *handler.LessonHandler
	Schedule *handler.ScheduleHandler
	Teacher  *handler.TeacherHandler
}

// RegisterRoutes mounts all routes on e.  Credential endpoints under
// /v1/auth are open but rate limited; everything else under /v1 requires
// a bearer access token.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Brute-force protection on the credential endpoints.  With no redis
	// the limiter is a pass-through.
	auth := e.Group("/v1/auth", middleware.RateLimit(rdb, 20, time.Minute))
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1", middleware.Authenticate(jwtSecret))
	v1.GET("/me", h.Auth.Me)

	v1.POST("/lessons", h.Lesson.Create)
	v1.GET("/lessons/:id", h.Lesson.Get)
	v1.PATCH("/lessons/:id", h.Lesson.Update)
	v1.DELETE("/lessons/:id", h.Lesson.Delete)
	v1.PUT("/lessons/:id/permissions", h.Lesson.Share)

	v1.GET("/schedule", h.Schedule.ForDate)

	v1.POST("/teachers", h.Teacher.Create)
	v1.GET("/teachers/:id", h.Teacher.Get)
	v1.PUT("/lessons/:id/teachers/:teacherID", h.Teacher.Assign)
	v1.DELETE("/lessons/:id/teachers/:teacherID", h.Teacher.Unassign)
}
