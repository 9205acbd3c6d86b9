package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/tasklite/internal/model"
	"github.com/nhle/tasklite/internal/search"
)

// TaskLister reads the local task list.
type TaskLister interface {
	ListAll(ctx context.Context) ([]model.Task, error)
}

// remoteTodo mirrors the shape of the remote collection, so one instance's
// /todos can be imported by another.
type remoteTodo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
}

// New returns an Echo instance with panic recovery, request logging and
// all routes registered.
func New(lister TaskLister, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	Register(e, lister, logger)
	return e
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, lister TaskLister, logger *log.Logger) {
	e.GET("/todos", getTodos(lister, logger))
	e.GET("/healthz", healthz(lister))
}

func getTodos(lister TaskLister, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := lister.ListAll(c.Request().Context())
		if err != nil {
			logger.WithError(err).Error("listing tasks for export")
			return c.String(http.StatusInternalServerError, "failed to list tasks")
		}

		tasks = search.Filter(tasks, c.QueryParam("q"))
		out := make([]remoteTodo, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, remoteTodo{
				ID:        strconv.FormatInt(t.ID, 10),
				Title:     t.Title,
				Completed: t.Done,
				CreatedAt: t.CreatedAt,
			})
		}
		return c.JSON(http.StatusOK, out)
	}
}

func healthz(lister TaskLister) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := lister.ListAll(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "store unavailable")
		}
		return c.NoContent(http.StatusOK)
	}
}
