package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader mirrors chat-platform file handles into publicly fetchable
// object storage. Chat file handles expire and are not anonymously
// downloadable, so anything the web viewer serves goes through here.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	PublicURL(key string) string
}
