package storage

import (
	"bytes"
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores archives in a MinIO deployment.
type MinIO struct {
	client *minio.Client
}

type MinIOOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseSSL       bool
}

func NewMinIO(opts MinIOOptions) (*MinIO, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinIO{client: client}, nil
}

func (m *MinIO) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, obj.Bucket, obj.Key, bytes.NewReader(obj.Body), obj.size(),
		minio.PutObjectOptions{ContentType: obj.ContentType, UserMetadata: obj.Metadata})
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{Bucket: info.Bucket, Key: info.Key, Size: info.Size, ETag: info.ETag}, nil
}

func (m *MinIO) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *MinIO) Close() error { return nil }
