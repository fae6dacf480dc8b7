package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type NewsletterHTTP struct {
	Svc *service.NewsletterService
}

func (h *NewsletterHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.subscribe")

	var req transport.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("subscribe_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.Svc.Subscribe(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			l.Warn("subscribe_error", "status", 400, "reason", "already subscribed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email already subscribed!")
		case errors.Is(err, service.ErrValidation):
			l.Warn("subscribe_error", "status", 400, "reason", "missing email", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Email is required!")
		}
		l.Error("subscribe_error", "status", 500, "reason", "cannot subscribe", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("subscribe_success")
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Subscribed successfully!"})
}
