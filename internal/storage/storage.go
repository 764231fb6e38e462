package storage

import (
	"context"
	"time"
)

// ObjectInfo describes one stored art object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service reads character art from remote object storage.
type Service interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
