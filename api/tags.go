package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
)

type tagBody struct {
	Name *string `json:"name"`
}

type tagResponse struct {
	Message string         `json:"message"`
	Tag     domain.TagView `json:"tag"`
}

type tagsResponse struct {
	Message string           `json:"message"`
	Tags    []domain.TagView `json:"tags"`
}

func createTag(tags *service.TagService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		var body tagBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		var name string
		if body.Name != nil {
			name = *body.Name
		}
		view, err := tags.Create(c.Request().Context(), p, name)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, tagResponse{
			Message: "tag created successfully",
			Tag:     *view,
		})
	}
}

func getTags(tags *service.TagService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalFrom(c, auth); err != nil {
			return unauthorized(c, err)
		}
		views, err := tags.List(c.Request().Context())
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, tagsResponse{
			Message: "tags retrieved successfully",
			Tags:    views,
		})
	}
}

func getTagByID(tags *service.TagService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalFrom(c, auth); err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		view, err := tags.Get(c.Request().Context(), id)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, tagResponse{
			Message: "tag retrieved successfully",
			Tag:     *view,
		})
	}
}

func updateTag(tags *service.TagService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		var body tagBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		var name string
		if body.Name != nil {
			name = *body.Name
		}
		view, err := tags.Update(c.Request().Context(), p, id, name)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, tagResponse{
			Message: "tag updated successfully",
			Tag:     *view,
		})
	}
}

func deleteTag(tags *service.TagService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		if err := tags.Delete(c.Request().Context(), p, id); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "tag soft deleted successfully"})
	}
}
