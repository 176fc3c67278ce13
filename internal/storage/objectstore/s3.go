package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lucsky/cuid"

	"service-booking/internal/config"
	"service-booking/internal/domain"
)

// ErrNotConfigured is returned by Upload when no bucket is configured.
var ErrNotConfigured = errors.New("object store not configured")

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploaded images in an S3 bucket and hands out {id, url} references.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3 builds a store from cfg. Without a bucket every upload fails with ErrNotConfigured.
func NewS3(ctx context.Context, cfg config.S3) (*S3Store, error) {
	if cfg.Bucket == "" {
		return &S3Store{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client s3API, cfg config.S3) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: base}
}

// Upload stores f under folder and returns its reference.
func (s *S3Store) Upload(ctx context.Context, folder string, f domain.Upload) (domain.Image, error) {
	if s.client == nil {
		return domain.Image{}, ErrNotConfigured
	}
	key := path.Join(folder, cuid.New()+strings.ToLower(path.Ext(f.Name)))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(len(f.Data))),
	})
	if err != nil {
		return domain.Image{}, fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return domain.Image{ID: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes the object referenced by id.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if s.client == nil {
		return ErrNotConfigured
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("unable to delete %q from S3: %w", id, err)
	}
	return nil
}
