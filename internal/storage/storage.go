// Package storage holds the blob store for raw upload bytes (S3-compatible).
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// KeyPrefix is the top-level prefix of every upload object.
const KeyPrefix = "uploads"

// PutObjectOptions define optional parameters for uploading objects.
// Size is the exact number of bytes, or -1 if unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the byte store collaborator of the ingestion pipeline.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that downloads the object without credentials.
	// A non-empty downloadName is sent back as the attachment file name.
	PresignGet(ctx context.Context, key, downloadName string, expiry time.Duration) (string, error)
}

// ObjectKey builds the key uploads/<owner>/<id><ext> where ext is taken from
// the original file name, lowercased.
func ObjectKey(ownerID, id, originalName string) string {
	return path.Join(KeyPrefix, ownerID, id+strings.ToLower(path.Ext(originalName)))
}
