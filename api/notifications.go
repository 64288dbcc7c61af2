package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
)

type markReadBody struct {
	NotificationIDs []uint `json:"notificationIds"`
}

type notificationsResponse struct {
	Message       string                `json:"message"`
	Notifications []domain.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

type markReadResponse struct {
	Message    string `json:"message"`
	UpdatedIDs []uint `json:"updatedIds"`
}

func getNotifications(notifications *service.NotificationService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}

		var isRead *bool
		if raw := c.QueryParam("is_read"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return respondError(c, logger, domain.Invalid("is_read", "must be true or false"))
			}
			isRead = &v
		}
		limit, err := optionalIntQuery(c, "limit")
		if err != nil {
			return respondError(c, logger, err)
		}
		offset, err := optionalIntQuery(c, "offset")
		if err != nil {
			return respondError(c, logger, err)
		}

		list, err := notifications.ListMine(c.Request().Context(), p, isRead, limit, offset)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, notificationsResponse{
			Message:       "notifications retrieved successfully",
			Notifications: list,
			Count:         len(list),
		})
	}
}

func markNotificationsRead(notifications *service.NotificationService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		var body markReadBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		updated, err := notifications.MarkRead(c.Request().Context(), p, body.NotificationIDs)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, markReadResponse{
			Message:    "notifications marked as read",
			UpdatedIDs: updated,
		})
	}
}

// optionalIntQuery parses a non-negative integer query parameter, zero when
// absent.
func optionalIntQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.Invalid(name, "must be a non-negative integer")
	}
	return v, nil
}
