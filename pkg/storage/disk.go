// Package storage stores uploaded files (restaurant and menu item images)
// on the local filesystem or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shashiranjanraj/ayoo/config"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// Disk is a flat object store addressed by slash-separated keys.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string) error
	// URL is the public address clients use to fetch key.
	URL(key string) string
	// KeyFromURL reverses URL for addresses this disk issued.
	KeyFromURL(url string) (string, bool)
}

// Open returns the disk selected by STORAGE_DISK ("local" or "s3").
func Open(ctx context.Context) (Disk, error) {
	switch d := config.StorageDefault(); d {
	case "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", d)
	}
}

// CleanKey normalises key and rejects paths that escape the disk root.
func CleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("storage: empty key")
	}
	return k, nil
}

// keyUnder strips base from url and cleans the remainder.
func keyUnder(base, url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, base+"/")
	if !ok {
		return "", false
	}
	k, err := CleanKey(rest)
	if err != nil || k != rest {
		return "", false
	}
	return k, true
}
