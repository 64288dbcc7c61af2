package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// Stable machine-readable error kinds.
const (
	KindValidation        = "VALIDATION"
	KindNotFoundForbidden = "NOT_FOUND_OR_FORBIDDEN"
	KindConflict          = "CONFLICT"
	KindUnauthorized      = "UNAUTHORIZED"
	KindInternal          = "INTERNAL"
)

type errorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError maps a service error to the wire taxonomy. Not-found and
// forbidden share one shape so responses never confirm that a resource
// exists; anything unrecognized is logged in full and returned as a
// generic internal error.
func respondError(c echo.Context, logger *log.Logger, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Kind:    KindValidation,
			Message: "validation failed",
			Fields:  ve.Fields,
		})
	}
	if domain.IsNotFound(err) {
		return c.JSON(http.StatusNotFound, errorResponse{
			Kind:    KindNotFoundForbidden,
			Message: "not found or no permission",
		})
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return c.JSON(http.StatusConflict, errorResponse{
			Kind:    KindConflict,
			Message: ce.Message,
		})
	}
	logger.WithFields(log.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Kind:    KindInternal,
		Message: "internal server error",
	})
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{
		Kind:    KindUnauthorized,
		Message: err.Error(),
	})
}
