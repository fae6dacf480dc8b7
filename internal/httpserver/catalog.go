package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("get_product_error", "status", 400, "reason", "invalid id", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("get_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot save product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) ReplaceProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.replace_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("replace_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	product, err := h.Svc.ReplaceProduct(ctx, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("replace_product_error", "status", 400, "reason", "invalid id", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("replace_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("replace_product_error", "status", 500, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	l.Info("replace_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	if err := h.Svc.DeleteProduct(ctx, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("delete_product_error", "status", 400, "reason", "invalid id", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
		}
		l.Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	l.Info("delete_product_success", "product_id", c.Param("id"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Deleted"})
}

func (h *CatalogHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_review")

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_review_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.Svc.AddReview(ctx, c.Param("id"), req); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_review_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_review_error", "status", 400, "reason", "invalid review", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("add_review_error", "status", 400, "reason", "cannot add review", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cannot add review")
	}

	l.Info("add_review_success", "product_id", c.Param("id"))
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Review added!"})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_error", "status", 400, "reason", "empty query", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		}
		l.Error("search_products_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, items)
}
