package storage

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// defaultS3Region is used for custom endpoints (localstack, R2) that ignore
// the region but still require one for signing.
const defaultS3Region = "us-east-1"

// S3 stores archives in AWS S3 or an S3-compatible endpoint.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// S3Options configures the S3 client. Static credentials are used only when
// an access key is set; otherwise the default AWS chain applies.
type S3Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	UsePathStyle bool
}

func (o S3Options) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error

	region := o.Region
	if region == "" && o.Endpoint != "" {
		region = defaultS3Region
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, o.SessionToken),
		))
	}

	return opts
}

func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx, opts.loadOptions()...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &S3{client: client, presign: s3.NewPresignClient(client)}, nil
}

func (s *S3) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(obj.size()),
		ContentType:   aws.String(obj.ContentType),
		Metadata:      obj.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{Bucket: obj.Bucket, Key: obj.Key, Size: obj.size(), ETag: aws.ToString(out.ETag)}, nil
}

func (s *S3) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Close is a no-op; the SDK client holds no persistent connections of its own.
func (s *S3) Close() error { return nil }
