package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Skotchmaster/storefront/internal/media"
)

type UploadService struct {
	Images media.ImageStore
}

// Upload streams one image to the image host. No retries.
func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	url, err := s.Images.Upload(ctx, filename, r)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedFormat) {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
		}
		return "", err
	}
	return url, nil
}
