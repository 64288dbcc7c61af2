package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
	"taskboard-api/storage"
)

type activityResponse struct {
	Message string                `json:"message"`
	Logs    []domain.ActivityView `json:"logs"`
	Count   int                   `json:"count"`
}

func getActivityLogs(activity *service.ActivityService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}

		f := storage.ActivityFilter{
			ActionType: c.QueryParam("action_type"),
			EntityType: c.QueryParam("entity_type"),
		}
		userID, err := optionalIDQuery(c, "user_id")
		if err != nil {
			return respondError(c, logger, err)
		}
		f.UserID = userID

		start, err := parseDate(c.QueryParam("start_date"))
		if err != nil {
			return respondError(c, logger, domain.Invalid("start_date", "must be a date or RFC 3339 timestamp"))
		}
		f.Start = start

		end, err := parseEndDate(c.QueryParam("end_date"))
		if err != nil {
			return respondError(c, logger, domain.Invalid("end_date", "must be a date or RFC 3339 timestamp"))
		}
		f.End = end

		logs, err := activity.List(c.Request().Context(), p, f)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, activityResponse{
			Message: "activity logs retrieved successfully",
			Logs:    logs,
			Count:   len(logs),
		})
	}
}
