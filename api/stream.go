package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard-api/stream"
)

// streamEvents serves the live event feed over SSE. Auth comes from the
// Authorization header or, for EventSource clients, a token query param.
func streamEvents(hub *stream.Hub, auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			if token := c.QueryParam("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		p, err := auth.PrincipalFromAuthHeader(authHeader)
		if err != nil {
			return unauthorized(c, err)
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		c.Response().WriteHeader(http.StatusOK)
		flusher.Flush()

		ctx := c.Request().Context()
		id, events := hub.Subscribe(p.UserID)
		defer hub.Unsubscribe(id)

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if _, err := c.Response().Write([]byte("event: " + ev.Name + "\n")); err != nil {
					return err
				}
				if _, err := c.Response().Write([]byte("data: ")); err != nil {
					return err
				}
				if _, err := c.Response().Write(ev.Payload); err != nil {
					return err
				}
				if _, err := c.Response().Write([]byte("\n\n")); err != nil {
					return err
				}
				flusher.Flush()
			}
		}
	}
}
