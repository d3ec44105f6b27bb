package services

import (
	"context"
	"io"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Upload is an image file received from a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// EventPublisher dispatches domain events.
type EventPublisher interface {
	FireAsync(ctx context.Context, event string, payload interface{})
}
