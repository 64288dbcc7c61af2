package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/service"
)

type credentialsBody struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string             `json:"message"`
	User    domain.UserSummary `json:"user"`
	Token   string             `json:"token"`
}

func registerUser(users *service.UserService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body credentialsBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		user, err := users.Register(c.Request().Context(), body.Username, body.Email, body.Password)
		if err != nil {
			return respondError(c, logger, err)
		}
		token, err := auth.IssueToken(user)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusCreated, authResponse{
			Message: "user registered successfully",
			User:    domain.UserSummary{ID: user.ID, Username: user.Username, Email: user.Email},
			Token:   token,
		})
	}
}

func loginUser(users *service.UserService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body credentialsBody
		if err := decodeBody(c, &body); err != nil {
			return invalidBody(c)
		}
		if body.Email == "" || body.Password == "" {
			return respondError(c, logger, domain.Invalid("body", "email and password are required"))
		}
		user, err := users.Authenticate(c.Request().Context(), body.Email, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return unauthorized(c, err)
			}
			return respondError(c, logger, err)
		}
		token, err := auth.IssueToken(user)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, authResponse{
			Message: "logged in successfully",
			User:    domain.UserSummary{ID: user.ID, Username: user.Username, Email: user.Email},
			Token:   token,
		})
	}
}

type usersResponse struct {
	Message string               `json:"message"`
	Users   []domain.UserSummary `json:"users"`
	Count   int                  `json:"count"`
}

func getUsers(users *service.UserService, auth *Auth, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := principalFrom(c, auth); err != nil {
			return unauthorized(c, err)
		}
		list, err := users.List(c.Request().Context())
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(http.StatusOK, usersResponse{
			Message: "users retrieved successfully",
			Users:   list,
			Count:   len(list),
		})
	}
}
