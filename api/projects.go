package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
)

type projectBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type projectResponse struct {
	Message string             `json:"message"`
	Project domain.ProjectView `json:"project"`
}

type projectsResponse struct {
	Message  string               `json:"message"`
	Projects []domain.ProjectView `json:"projects"`
}

func createProject(projects *service.ProjectService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		var body projectBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		in := service.CreateProjectInput{Description: body.Description}
		if body.Name != nil {
			in.Name = *body.Name
		}
		view, err := projects.Create(c.Request().Context(), p, in)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, projectResponse{
			Message: "project created successfully",
			Project: *view,
		})
	}
}

func getProjects(projects *service.ProjectService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		views, err := projects.List(c.Request().Context(), p)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, projectsResponse{
			Message:  "projects retrieved successfully",
			Projects: views,
		})
	}
}

func getProjectByID(projects *service.ProjectService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		view, err := projects.Get(c.Request().Context(), p, id)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, projectResponse{
			Message: "project retrieved successfully",
			Project: *view,
		})
	}
}

func updateProject(projects *service.ProjectService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		var body projectBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		view, err := projects.Update(c.Request().Context(), p, id, service.UpdateProjectInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, projectResponse{
			Message: "project updated successfully",
			Project: *view,
		})
	}
}

func deleteProject(projects *service.ProjectService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := principalFrom(c, auth)
		if err != nil {
			return unauthorized(c, err)
		}
		id, err := idParam(c, "id")
		if err != nil {
			return respondError(c, logger, err)
		}
		if err := projects.Delete(c.Request().Context(), p, id); err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "project soft deleted successfully"})
	}
}
