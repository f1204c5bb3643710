package storage

import (
	"context"
	"errors"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores archives in Google Cloud Storage. Signing needs a service
// account id and private key; without them PresignGet fails.
type GCS struct {
	client     *gcs.Client
	accessID   string
	privateKey []byte
}

type GCSOptions struct {
	// Client is used as is when set; ClientOptions are ignored.
	Client         *gcs.Client
	ClientOptions  []option.ClientOption
	GoogleAccessID string
	PrivateKey     []byte
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	client := opts.Client
	if client == nil {
		var err error
		if client, err = gcs.NewClient(ctx, opts.ClientOptions...); err != nil {
			return nil, err
		}
	}

	return &GCS{client: client, accessID: opts.GoogleAccessID, privateKey: opts.PrivateKey}, nil
}

func (g *GCS) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	w := g.client.Bucket(obj.Bucket).Object(obj.Key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = obj.Metadata

	if _, err := w.Write(obj.Body); err != nil {
		return ObjectInfo{}, errors.Join(err, w.Close())
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: obj.Bucket, Key: obj.Key, Size: obj.size()}
	if attrs := w.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
	}
	return info, nil
}

func (g *GCS) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if g.accessID == "" || len(g.privateKey) == 0 {
		return "", ErrMissingSigner
	}

	return gcs.SignedURL(bucket, key, &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.accessID,
		PrivateKey:     g.privateKey,
	})
}

func (g *GCS) Close() error {
	return g.client.Close()
}
