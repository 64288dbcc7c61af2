package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
	"taskboard-api/stream"
)

const maxBodySize = 64 * 1024 // 64 KiB

// Services bundles the entity services the handlers close over.
type Services struct {
	Users         *service.UserService
	Projects      *service.ProjectService
	Tasks         *service.TaskService
	Tags          *service.TagService
	Notifications *service.NotificationService
	Activity      *service.ActivityService
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc Services, auth *Auth, hub *stream.Hub, logger *log.Logger) {
	e.POST("/auth/register", registerUser(svc.Users, auth, logger))
	e.POST("/auth/login", loginUser(svc.Users, auth, logger))
	e.GET("/users", getUsers(svc.Users, auth, logger))

	e.POST("/projects", createProject(svc.Projects, auth, logger))
	e.GET("/projects", getProjects(svc.Projects, auth, logger))
	e.GET("/projects/:id", getProjectByID(svc.Projects, auth, logger))
	e.PUT("/projects/:id", updateProject(svc.Projects, auth, logger))
	e.DELETE("/projects/:id", deleteProject(svc.Projects, auth, logger))

	e.POST("/tasks", createTask(svc.Tasks, auth, logger))
	e.GET("/tasks", getTasks(svc.Tasks, auth, logger))
	e.GET("/tasks/:id", getTaskByID(svc.Tasks, auth, logger))
	e.PUT("/tasks/:id", updateTask(svc.Tasks, auth, logger))
	e.DELETE("/tasks/:id", deleteTask(svc.Tasks, auth, logger))
	e.POST("/tasks/:id/tags/:tagId", addTagToTask(svc.Tasks, auth, logger))
	e.DELETE("/tasks/:id/tags/:tagId", removeTagFromTask(svc.Tasks, auth, logger))

	e.POST("/tags", createTag(svc.Tags, auth, logger))
	e.GET("/tags", getTags(svc.Tags, auth, logger))
	e.GET("/tags/:id", getTagByID(svc.Tags, auth, logger))
	e.PUT("/tags/:id", updateTag(svc.Tags, auth, logger))
	e.DELETE("/tags/:id", deleteTag(svc.Tags, auth, logger))

	e.GET("/notifications", getNotifications(svc.Notifications, auth, logger))
	e.POST("/notifications/mark-read", markNotificationsRead(svc.Notifications, auth, logger))

	e.GET("/activity-logs", getActivityLogs(svc.Activity, auth, logger))

	e.GET("/stream", streamEvents(hub, auth))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// principalFrom resolves the caller's principal from the request.
func principalFrom(c echo.Context, auth *Auth) (domain.Principal, error) {
	return auth.PrincipalFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

// decodeBody reads a size-capped JSON body into v, rejecting unknown fields.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{
		Kind:    KindValidation,
		Message: "invalid body",
	})
}

// idParam parses a positive integer path parameter.
func idParam(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return uint(id), nil
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseEndDate is parseDate for the upper bound of a range: a bare date is
// extended to the end of that day so the range includes it.
func parseEndDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.Add(24*time.Hour - time.Nanosecond)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
