package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/rayz-store/tienda-backend/pkg/config"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

const (
	defaultCacheControl = "private, max-age=3600"
	pingTimeout         = 5 * time.Second
)

// ErrObjectNotFound is returned when the key does not exist in the bucket.
var ErrObjectNotFound = errors.New("storage object not found")

// ObjectStore is the surface the image service depends on.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client wraps a portable blob bucket (gs://, file://, mem://).
type Client struct {
	bucket       *blob.Bucket
	cacheControl string
}

// Open resolves the bucket URL through the registered gocloud drivers.
func Open(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketURL) == "" {
		return nil, errors.New("storage bucket url is required")
	}
	bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening bucket: %w", err)
	}
	if logg != nil {
		ctx = logg.WithField(ctx, "bucket_scheme", bucketScheme(cfg.BucketURL))
		logg.Info(ctx, "object storage bucket opened")
	}
	return New(bucket), nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket) *Client {
	return &Client{bucket: bucket, cacheControl: defaultCacheControl}
}

// Upload streams body into key.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (err error) {
	if c == nil || c.bucket == nil {
		return errors.New("storage client not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("object key is required")
	}

	w, err := c.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType:  contentType,
		CacheControl: c.cacheControl,
	})
	if err != nil {
		return fmt.Errorf("open writer %s: %w", key, err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close writer %s: %w", key, closeErr)
		}
	}()

	if _, err = io.Copy(w, body); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.bucket == nil {
		return errors.New("storage client not initialized")
	}
	if err := c.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a short-lived GET URL for key.
func (c *Client) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if c == nil || c.bucket == nil {
		return "", errors.New("storage client not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("object key is required")
	}
	signed, err := c.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{
		Expiry: expiry,
		Method: http.MethodGet,
	})
	if err != nil {
		return "", fmt.Errorf("sign object %s: %w", key, err)
	}
	return signed, nil
}

// Read returns the whole object; used by tests and tooling.
func (c *Client) Read(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.bucket == nil {
		return nil, errors.New("storage client not initialized")
	}
	data, err := c.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if c == nil || c.bucket == nil {
		return false, errors.New("storage client not initialized")
	}
	return c.bucket.Exists(ctx, key)
}

// List returns every key under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	if c == nil || c.bucket == nil {
		return nil, errors.New("storage client not initialized")
	}
	var keys []string
	iter := c.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		if !obj.IsDir {
			keys = append(keys, obj.Key)
		}
	}
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.bucket == nil {
		return errors.New("storage client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	ok, err := c.bucket.IsAccessible(ctx)
	if err != nil {
		return fmt.Errorf("bucket ping: %w", err)
	}
	if !ok {
		return errors.New("bucket not accessible")
	}
	return nil
}

// Close releases the bucket.
func (c *Client) Close() error {
	if c == nil || c.bucket == nil {
		return nil
	}
	return c.bucket.Close()
}

func bucketScheme(bucketURL string) string {
	if idx := strings.Index(bucketURL, "://"); idx > 0 {
		return bucketURL[:idx]
	}
	return "unknown"
}
