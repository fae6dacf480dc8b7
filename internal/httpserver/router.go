package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	CatalogHandler    *CatalogHTTP
	AuthHandler       *AuthHTTP
	OrderHandler      *OrderHTTP
	NewsletterHandler *NewsletterHTTP
	UploadHandler     *UploadHTTP

	Store     Pinger
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api", auth.Identify(d.JWTSecret))

	api.POST("/upload", d.UploadHandler.Upload)

	api.POST("/auth/signup", d.AuthHandler.Signup)
	api.POST("/auth/login", d.AuthHandler.Login)

	api.POST("/subscribe", d.NewsletterHandler.Subscribe)

	items := api.Group("/items")
	items.GET("", d.CatalogHandler.ListProducts)
	items.GET("/search", d.CatalogHandler.SearchProducts)
	items.POST("", d.CatalogHandler.CreateProduct)
	items.GET("/:id", d.CatalogHandler.GetProduct)
	items.PUT("/:id", d.CatalogHandler.ReplaceProduct)
	items.DELETE("/:id", d.CatalogHandler.DeleteProduct)
	items.POST("/:id/review", d.CatalogHandler.AddReview)

	api.POST("/orders", d.OrderHandler.CreateOrder)
	api.GET("/orders", d.OrderHandler.ListOrders)
	api.PATCH("/orders/:id", d.OrderHandler.UpdateStatus)
	api.GET("/user-orders/:email", d.OrderHandler.ListUserOrders)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Store == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
