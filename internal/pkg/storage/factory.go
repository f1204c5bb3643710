package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by storage.driver.
const (
	DriverS3     = "s3"
	DriverGCS    = "gcs"
	DriverMinIO  = "minio"
	DriverMemory = "memory"
)

var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions carries the settings of every driver; only the selected
// driver's section is read.
type FactoryOptions struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver builds the Storage named by driver. An empty name selects
// the in-memory store.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	var (
		s   Storage
		err error
	)

	switch name := strings.ToLower(strings.TrimSpace(driver)); name {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverS3:
		s, err = NewS3(ctx, opts.S3)
	case DriverGCS:
		s, err = NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		s, err = NewMinIO(opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: init %s: %w", driver, err)
	}

	return s, nil
}
