package storage

import (
	"AssetVault/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// PutOptions describes upload options for object storage.
// Public objects are written under PublicPrefix, the only part of the bucket
// the backends open to anonymous reads.
type PutOptions struct {
	ContentType string
	Public      bool
}

const PublicPrefix = "public/"

// ObjectName is the name an object with key is stored under.
func ObjectName(key string, public bool) string {
	if public {
		return PublicPrefix + key
	}
	return key
}

// PublicReadPolicy allows anonymous GET on PublicPrefix and nothing else.
func PublicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": map[string][]string{"AWS": {"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/%s*", bucket, PublicPrefix)},
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

// Store abstracts object storage operations.
type Store interface {
	// PutObject uploads the reader under ObjectName(key, opts.Public) and returns the object's locator.
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) (string, error)
	RemoveObject(ctx context.Context, key string) error
	PresignedGetObject(ctx context.Context, key string, expiry time.Duration) (string, error)
	// KeyFromLocator recovers the object key from a locator this store produced.
	KeyFromLocator(locator string) (string, error)
	Bucket() string
}

var ErrForeignLocator = errors.New("locator does not belong to this store")

// New builds the backend selected by cfg.Driver and makes sure its bucket exists.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinioStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Driver)
	}
}

// Locators maps keys to path-style URLs of the form <base>/<bucket>/<key> and back.
type Locators struct {
	Base   string
	Bucket string
}

func (l Locators) prefix() string {
	return strings.TrimRight(l.Base, "/") + "/" + l.Bucket + "/"
}

// Locator returns the URL for key. Each path segment is escaped separately.
func (l Locators) Locator(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return l.prefix() + strings.Join(segments, "/")
}

// Key reverses Locator.
func (l Locators) Key(locator string) (string, error) {
	if !strings.HasPrefix(locator, l.prefix()) {
		return "", ErrForeignLocator
	}
	escaped := strings.TrimPrefix(locator, l.prefix())
	if i := strings.IndexAny(escaped, "?#"); i >= 0 {
		escaped = escaped[:i]
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("decode locator key: %w", err)
	}
	if key == "" {
		return "", ErrForeignLocator
	}
	return key, nil
}
