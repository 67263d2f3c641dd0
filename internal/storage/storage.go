// Package storage stores uploaded product images on local disk or S3.
package storage

import (
	"context"
	"io"
)

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

// Storage writes uploaded objects and removes them again. KeyFromURL maps a
// public URL returned by Put back to its key; false means the URL is not
// served by this backend.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
