// Package storage is the filesystem abstraction behind uploaded images.
//
// Two drivers are available:
//   - "local": files under STORAGE_LOCAL_ROOT, served at STORAGE_URL
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disk, _ := storage.Connect(ctx)
//	images := storage.NewImages(disk, "products")
//	url, _ := images.Upload(ctx, "rose.png", file)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

var ErrNotFound = errors.New("storage: file not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	// Delete removes a file. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for path.
	URL(path string) string
}

// Connect builds the disk named by STORAGE_DISK. An s3 disk that cannot be
// configured falls back to local.
func Connect(ctx context.Context) (Disk, error) {
	local, err := NewLocal(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return nil, err
	}

	if config.StorageDisk() != "s3" {
		return local, nil
	}

	d, err := NewS3(ctx, S3Options{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
		BaseURL:  config.StorageS3URL(),
	})
	if err != nil {
		logger.Warn("storage: s3 disabled, using local disk", "error", err)
		return local, nil
	}
	return d, nil
}

func wrap(driver, op, path string, err error) error {
	return fmt.Errorf("storage/%s: %s %s: %w", driver, op, path, err)
}
