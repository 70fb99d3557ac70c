package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"taskapi/internal/db/models"
)

// Register wires up all API routes and the shared middleware on the provided
// Echo instance.
func Register(e *echo.Echo, store Store, logger *log.Logger) {
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(logger))

	for _, p := range []string{"/tasks/", "/tasks"} {
		e.POST(p, createTask(store))
		e.GET(p, listTasks(store))
	}
	e.GET("/tasks/:task_id", getTask(store))
	e.PUT("/tasks/:task_id", updateTask(store))
	e.DELETE("/tasks/:task_id", deleteTask(store))
	e.GET("/healthz", healthz(store))
}

// withSession runs fn on a freshly acquired session and releases it on every
// exit path, panics included.
func withSession(c echo.Context, store Store, fn func(Session) error) error {
	sess, err := store.Acquire(c.Request().Context())
	if err != nil {
		return err
	}
	defer sess.Release()
	return fn(sess)
}

func createTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := decodeTaskInput(c)
		if err != nil {
			return err
		}
		return withSession(c, store, func(s Session) error {
			task, err := s.CreateTask(c.Request().Context(), in.toCreate())
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, task)
		})
	}
}

func getTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseTaskID(c)
		if err != nil {
			return err
		}
		return withSession(c, store, func(s Session) error {
			task, err := s.GetTaskByID(c.Request().Context(), id)
			if err != nil {
				return err
			}
			if task == nil {
				return echo.NewHTTPError(http.StatusNotFound, msgTaskNotFound)
			}
			return c.JSON(http.StatusOK, task)
		})
	}
}

func updateTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseTaskID(c)
		if err != nil {
			return err
		}
		in, err := decodeTaskInput(c)
		if err != nil {
			return err
		}
		return withSession(c, store, func(s Session) error {
			task, err := s.UpdateTask(c.Request().Context(), id, in.toUpdate())
			if err != nil {
				return err
			}
			if task == nil {
				return echo.NewHTTPError(http.StatusNotFound, msgTaskNotFound)
			}
			return c.JSON(http.StatusOK, task)
		})
	}
}

func deleteTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseTaskID(c)
		if err != nil {
			return err
		}
		return withSession(c, store, func(s Session) error {
			ok, err := s.DeleteTask(c.Request().Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return echo.NewHTTPError(http.StatusNotFound, msgTaskNotFound)
			}
			return c.JSON(http.StatusOK, messageResponse{Message: msgTaskDeleted})
		})
	}
}

func listTasks(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		completed, err := parseCompletedFilter(c)
		if err != nil {
			return err
		}
		return withSession(c, store, func(s Session) error {
			tasks, err := s.ListTasks(c.Request().Context(), completed)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, models.NewTaskList(tasks))
		})
	}
}

func healthz(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}
