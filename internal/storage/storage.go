// Package storage archives objects on the local filesystem or in
// Cloudflare R2.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage is a flat key/value object store.
//
// Implementations:
// - LocalStorage: files under a base directory
// - R2Storage: objects in a Cloudflare R2 bucket
type Storage interface {
	// Put stores data at key. Returns ErrKeyExists if the key is taken and
	// opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object at key; the caller must close the reader.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Empty means application/octet-stream.
	ContentType string

	// MaxSize rejects objects larger than this many bytes. 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool

	// Metadata is stored alongside the object where the backend supports it.
	Metadata map[string]string
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory, e.g. "./archive".
	BasePath string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// Endpoint overrides https://{account_id}.r2.cloudflarestorage.com.
	// Any S3-compatible endpoint works, which is how tests and MinIO run.
	Endpoint string

	// Region defaults to "auto".
	Region string
}

const (
	ProviderNone  = "none"
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeDefault = "application/octet-stream"
)

// HistoryArchiveKey is the key of an archived history entry.
// Format: users/{userID}/history/{historyID}.json
func HistoryArchiveKey(userID, historyID uuid.UUID) string {
	return fmt.Sprintf("users/%s/history/%s.json", userID, historyID)
}

// JSONOptions returns PutOptions for a JSON document.
func JSONOptions(overwrite bool) PutOptions {
	return PutOptions{ContentType: contentTypeJSON, Overwrite: overwrite}
}
