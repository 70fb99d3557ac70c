package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"taskapi/internal/db/models"
)

const (
	taskBodyMaxSize = 1 << 20

	msgTaskNotFound = "Task not found"
	msgTaskDeleted  = "Task deleted successfully"
)

// taskInput is the body accepted by both create and update. Pointers tell an
// absent field apart from its zero value.
type taskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`

	completedNull bool
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (in taskInput) validate() error {
	if in.Title == nil {
		return errors.New("title: field required")
	}
	if in.completedNull {
		return errors.New("completed: none is not an allowed value")
	}
	return nil
}

func (in taskInput) completed() bool {
	return in.Completed != nil && *in.Completed
}

func (in taskInput) toCreate() models.TaskCreate {
	return models.TaskCreate{Title: *in.Title, Description: in.Description, Completed: in.completed()}
}

func (in taskInput) toUpdate() models.TaskUpdate {
	return models.TaskUpdate{Title: *in.Title, Description: in.Description, Completed: in.completed()}
}

func unprocessable(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, msg)
}

// decodeTaskInput reads and structurally validates a task body. The body
// must hold exactly one JSON object of at most taskBodyMaxSize bytes.
func decodeTaskInput(c echo.Context) (taskInput, error) {
	var in taskInput
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, taskBodyMaxSize+1))
	if err != nil {
		return in, unprocessable("invalid body: " + err.Error()).SetInternal(err)
	}
	if len(body) > taskBodyMaxSize {
		return in, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	r := bytes.NewReader(body)
	dec := sonic.ConfigStd.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return in, unprocessable("invalid body: " + err.Error()).SetInternal(err)
	}
	rest, err := io.ReadAll(io.MultiReader(dec.Buffered(), r))
	if err != nil || len(bytes.TrimSpace(rest)) > 0 {
		return in, unprocessable("invalid body: unexpected data after JSON object")
	}

	// A null completed decodes like an absent one; tell them apart on the raw object.
	if in.Completed == nil {
		var raw map[string]any
		if err := sonic.ConfigStd.Unmarshal(body, &raw); err == nil {
			if v, ok := raw["completed"]; ok && v == nil {
				in.completedNull = true
			}
		}
	}
	if err := in.validate(); err != nil {
		return in, unprocessable(err.Error())
	}
	return in, nil
}

func parseTaskID(c echo.Context) (int64, error) {
	raw := c.Param("task_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, unprocessable(fmt.Sprintf("task_id: %q is not a valid integer", raw))
	}
	return id, nil
}

// parseCompletedFilter returns nil when the query parameter is omitted.
func parseCompletedFilter(c echo.Context) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam("completed"))
	if raw == "" {
		return nil, nil
	}
	v, ok := parseBool(raw)
	if !ok {
		return nil, unprocessable(fmt.Sprintf("completed: %q is not a valid boolean", raw))
	}
	return &v, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on", "t", "y":
		return true, true
	case "false", "0", "no", "off", "f", "n":
		return false, true
	}
	return false, false
}
