package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 400, "reason", "email already exists", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email already exists!")
		case errors.Is(err, service.ErrValidation):
			l.Warn("signup_error", "status", 400, "reason", "missing fields", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Name, email and password are required!")
		}
		l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "User created successfully!"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("login_error", "status", 404, "reason", "user not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "User not found!")
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 400, "reason", "wrong password", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials!")
		}
		l.Error("login_error", "status", 500, "reason", "cannot log in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("login_success")
	return c.JSON(http.StatusOK, transport.LoginResponse{Token: res.Token, User: res.User})
}
