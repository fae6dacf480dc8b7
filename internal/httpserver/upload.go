package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type UploadHTTP struct {
	Svc *service.UploadService
}

func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.image")

	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "no image field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}

	f, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "reason", "cannot open upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed")
	}
	defer f.Close()

	url, err := h.Svc.Upload(ctx, fh.Filename, f)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMedia) {
			l.Warn("upload_error", "status", 400, "reason", "unsupported format", "filename", fh.Filename, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Only jpg, jpeg and png images are allowed")
		}
		l.Error("upload_error", "status", 500, "reason", "image host failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed")
	}

	l.Info("upload_success", "url", url)
	return c.JSON(http.StatusOK, transport.UploadResponse{URL: url})
}
