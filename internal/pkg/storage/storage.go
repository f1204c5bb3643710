// Package storage writes audit archives to object storage and hands out
// time-limited download links for them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrMissingSigner indicates signed URL support is not configured.
	ErrMissingSigner = errors.New("storage: signed url signer not configured")
	// ErrObjectNotFound is returned when presigning an object that was never written.
	ErrObjectNotFound = errors.New("storage: object not found")
)

// Storage is the object store behind audit archives.
type Storage interface {
	io.Closer

	// Put writes obj, replacing any object under the same key.
	Put(ctx context.Context, obj Object) (ObjectInfo, error)
	// PresignGet returns a download URL valid for expiry.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Object is a fully buffered upload. Archives are rendered in memory before
// upload, so the size is always known up front.
type Object struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

func (o Object) size() int64 { return int64(len(o.Body)) }

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}
