package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cavos-labs/forma-api/internal/logger"
)

// ProofStore keeps payment proof images in an S3-compatible bucket and
// serves them back through a public base URL.
type ProofStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string

	ensureOnce sync.Once
	ensureErr  error
}

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

func New(cfg Config) (*ProofStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &ProofStore{
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		publicBaseURL: strings.TrimRight(publicBase, "/"),
	}, nil
}

// EnsureBucket lazily creates the proof bucket on first use.
func (s *ProofStore) EnsureBucket(ctx context.Context) error {
	if s.bucket == "" {
		return fmt.Errorf("proof bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		logger.Infof("Creating proof bucket %q", s.bucket)
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure proof bucket %q: %w", s.bucket, s.ensureErr)
	}

	return nil
}

// Put uploads a proof image. A failed first attempt ensures the bucket and
// retries once; buckets disappear out of band often enough to warrant it.
func (s *ProofStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" || len(data) == 0 {
		return "", fmt.Errorf("empty proof upload")
	}

	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Errorf("Proof upload failed, retrying once: %v", err)
		_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return "", fmt.Errorf("put proof object: %w", err)
		}
	}

	return s.PublicURL(key), nil
}

func (s *ProofStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete proof object: %w", err)
	}
	return nil
}

func (s *ProofStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
}
