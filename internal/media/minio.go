package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const objectPrefix = "chat-media/"

// Config holds S3-compatible object storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which objects are reachable. Derived from
	// the endpoint when empty.
	PublicURL string
}

// Storage resolves uploads by writing them to an S3-compatible bucket.
type Storage struct {
	cfg    Config
	client *minio.Client
}

// trimScheme strips an http or https prefix; minio.New wants a bare
// host[:port] endpoint.
func trimScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}

// NewStorage builds a storage-backed resolver.
func NewStorage(cfg Config) (*Storage, error) {
	client, err := minio.New(trimScheme(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	return &Storage{cfg: cfg, client: client}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Resolve uploads the blob and returns its public URL and detected kind.
func (s *Storage) Resolve(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*Reference, error) {
	sniff := make([]byte, 512)
	n, err := io.ReadFull(r, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	sniff = sniff[:n]

	kind, contentType, err := detectKind(contentType, sniff)
	if err != nil {
		return nil, err
	}

	key := objectPrefix + uuid.NewString() + strings.ToLower(path.Ext(filename))
	body := io.MultiReader(bytes.NewReader(sniff), r)

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &Reference{URL: s.objectURL(key), Kind: kind}, nil
}

func (s *Storage) objectURL(key string) string {
	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + trimScheme(s.cfg.Endpoint)
	}
	return strings.TrimSuffix(base, "/") + "/" + s.cfg.Bucket + "/" + key
}
