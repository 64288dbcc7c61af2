package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
	"taskboard-api/storage"
)

// taskBody keeps due_date and assigned_to raw so an explicit null in an
// update can clear the column while an absent field keeps it.
type taskBody struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	DueDate      json.RawMessage `json:"due_date"`
	Priority     *string         `json:"priority"`
	Status       *string         `json:"status"`
	AssignedTo   json.RawMessage `json:"assigned_to"`
	ProjectID    *uint           `json:"project_id"`
	ParentTaskID *uint           `json:"parent_task_id"`
}

// dueDateValue decodes a raw due_date field: null, a bare date or an
// RFC 3339 timestamp.
func dueDateValue(raw json.RawMessage) (*time.Time, error) {
	var s *string
	if err := sonic.ConfigStd.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return parseDate(*s)
}

// assignedToValue decodes a raw assigned_to field: null or a user id.
func assignedToValue(raw json.RawMessage) (*uint, error) {
	var id *uint
	if err := sonic.ConfigStd.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	return id, nil
}

type taskResponse struct {
	Message string          `json:"message"`
	Task    domain.TaskView `json:"task"`
}

type tasksResponse struct {
	Message string            `json:"message"`
	Tasks   []domain.TaskView `json:"tasks"`
	Count   int               `json:"count"`
}

func createTask(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		var body taskBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		in := service.CreateTaskInput{
			Description:  body.Description,
			ParentTaskID: body.ParentTaskID,
		}
		if body.AssignedTo != nil {
			assigned, err := assignedToValue(body.AssignedTo)
			if err != nil {
				return respondError(c, logger, domain.Invalid("assigned_to", "must be a user id or null"))
			}
			in.AssignedTo = assigned
		}
		if body.Title != nil {
			in.Title = *body.Title
		}
		if body.ProjectID != nil {
			in.ProjectID = *body.ProjectID
		}
		if body.Priority != nil {
			in.Priority = domain.Priority(*body.Priority)
		}
		if body.Status != nil {
			in.Status = domain.Status(*body.Status)
		}
		if body.DueDate != nil {
			due, err := dueDateValue(body.DueDate)
			if err != nil {
				return respondError(c, logger, domain.Invalid("due_date", "must be a date, RFC 3339 timestamp or null"))
			}
			in.DueDate = due
		}
		view, err := tasks.Create(c.Request().Context(), p, in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, taskResponse{
			Message: "task created successfully",
			Task:    *view,
		})
	}
}

func getTasks(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, ctx := newRequestMetrics(c.Request().Context(), logger, "GET /tasks")

		authStart := time.Now()
		p, err := principalFrom(c, auth)
		m.ObserveAuth(time.Since(authStart))
		if err != nil {
			m.SetErrorStage("auth")
			m.Log(http.StatusUnauthorized, err)
			return unauthorized(c, err)
		}

		filter, err := taskFilterFromQuery(c)
		if err != nil {
			m.SetErrorStage("query")
			m.Log(http.StatusBadRequest, err)
			return respondError(c, logger, err)
		}

		fetchStart := time.Now()
		views, err := tasks.List(ctx, p, filter)
		m.ObserveFetch(time.Since(fetchStart))
		if err != nil {
			m.SetErrorStage("fetch")
			m.Log(http.StatusInternalServerError, err)
			return respondError(c, logger, err)
		}
		m.SetItemsReturned(len(views))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{
			Message: "tasks retrieved successfully",
			Tasks:   views,
			Count:   len(views),
		})
		m.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			m.SetErrorStage("encode")
		}
		m.Log(http.StatusOK, err)
		return err
	}
}

func getTaskByID(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		view, err := tasks.Get(c.Request().Context(), p, id)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, taskResponse{
			Message: "task retrieved successfully",
			Task:    *view,
		})
	}
}

func updateTask(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		var body taskBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		in := service.UpdateTaskInput{
			Title:        body.Title,
			Description:  body.Description,
			ProjectID:    body.ProjectID,
			ParentTaskID: body.ParentTaskID,
		}
		if body.AssignedTo != nil {
			assigned, err := assignedToValue(body.AssignedTo)
			if err != nil {
				return respondError(c, logger, domain.Invalid("assigned_to", "must be a user id or null"))
			}
			in.AssignedTo = assigned
			in.AssignedToSet = true
		}
		if body.Priority != nil {
			pr := domain.Priority(*body.Priority)
			in.Priority = &pr
		}
		if body.Status != nil {
			st := domain.Status(*body.Status)
			in.Status = &st
		}
		if body.DueDate != nil {
			due, err := dueDateValue(body.DueDate)
			if err != nil {
				return respondError(c, logger, domain.Invalid("due_date", "must be a date, RFC 3339 timestamp or null"))
			}
			in.DueDate = due
			in.DueDateSet = true
		}
		view, err := tasks.Update(c.Request().Context(), p, id, in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, taskResponse{
			Message: "task updated successfully",
			Task:    *view,
		})
	}
}

func deleteTask(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		if err := tasks.Delete(c.Request().Context(), p, id); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "task soft deleted successfully"})
	}
}

func addTagToTask(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		taskID, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		tagID, err := idParam(c, "tagId")
		if err != nil {
			return respondError(c, logger, err)
		}
		if err := tasks.AddTag(c.Request().Context(), p, taskID, tagID); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, map[string]string{"message": "tag added to task successfully"})
	}
}

func removeTagFromTask(tasks *service.TaskService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		taskID, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		tagID, err := idParam(c, "tagId")
		if err != nil {
			return respondError(c, logger, err)
		}
		if err := tasks.RemoveTag(c.Request().Context(), p, taskID, tagID); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "tag removed from task successfully"})
	}
}

// taskFilterFromQuery maps the list query parameters onto a storage filter.
func taskFilterFromQuery(c echo.Context) (storage.TaskFilter, error) {
	f := storage.TaskFilter{
		Search:   c.QueryParam("search"),
		Priority: c.QueryParam("priority"),
		Status:   c.QueryParam("status"),
		OrderBy:  c.QueryParam("order_by"),
		OrderDir: c.QueryParam("order_direction"),
	}

	projectID, err := optionalIDQuery(c, "project_id")
	if err != nil {
		return f, err
	}
	f.ProjectID = projectID

	assignedTo, err := optionalIDQuery(c, "assigned_to")
	if err != nil {
		return f, err
	}
	f.AssignedTo = assignedTo

	if raw := c.QueryParam("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil || id == 0 {
				return f, domain.Invalid("tags", "must be a comma-separated list of tag ids")
			}
			f.TagIDs = append(f.TagIDs, uint(id))
		}
	}

	start, err := parseDate(c.QueryParam("due_date_start"))
	if err != nil {
		return f, domain.Invalid("due_date_start", "must be a date or RFC 3339 timestamp")
	}
	f.DueStart = start

	end, err := parseEndDate(c.QueryParam("due_date_end"))
	if err != nil {
		return f, domain.Invalid("due_date_end", "must be a date or RFC 3339 timestamp")
	}
	f.DueEnd = end

	return f, nil
}

func optionalIDQuery(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, domain.Invalid(name, "must be a positive integer")
	}
	v := uint(id)
	return &v, nil
}
