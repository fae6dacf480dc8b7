package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.OrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "cannot place order", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cannot place order")
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "reason", "cannot load orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ListUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_user_orders")

	orders, err := h.Svc.ListOrdersByEmail(ctx, c.Param("email"))
	if err != nil {
		l.Error("list_user_orders_error", "status", 500, "reason", "cannot load orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.Svc.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_status_error", "status", 400, "reason", "invalid id", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid order id")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_status_error", "status", 404, "reason", "order not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		l.Error("update_status_error", "status", 500, "reason", "cannot update order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}

	l.Info("update_status_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}
