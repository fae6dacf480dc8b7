package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrNotConfigured     = errors.New("image store not configured")
)

var AllowedFormats = []string{"jpg", "png", "jpeg"}

// ImageStore pushes an image to a public host and returns its URL.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

func CheckFormat(filename string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !slices.Contains(AllowedFormats, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	return nil
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, Folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := CheckFormat(filename); err != nil {
		return "", err
	}

	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.Folder,
		AllowedFormats: api.CldAPIArray(AllowedFormats),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Unconfigured is used when no image host credentials are present;
// every upload fails.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}
