package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/tingold/geoatlas/change"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes JPEG, PNG, GIF, WebP or TIFF data.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode: %v", ErrFetchFailure, err)
	}
	return img, format, nil
}

// Source fetches and decodes photo images by URL.
type Source struct {
	Fetcher Fetcher
}

// Image fetches p.URL and decodes it.
func (s Source) Image(ctx context.Context, p change.Photo) (image.Image, error) {
	if p.URL == "" {
		return nil, fmt.Errorf("%w: photo %s has no url", ErrFetchFailure, p.ID)
	}
	data, err := s.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("photo %s: %w", p.ID, err)
	}
	return img, nil
}
