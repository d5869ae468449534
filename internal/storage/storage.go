package storage

import "context"

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	URL  string
	ETag string
	Size int64
}

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket      string
	Key         string
	ContentType string
}

// Service puts and deletes blobs in remote object storage. Everything beyond
// put/delete-by-key is out of scope; failures surface as plain errors.
type Service interface {
	Upload(ctx context.Context, data []byte, opts UploadOptions) (ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
}
