package cloud

import "context"

// ObjectStore abstracts the object storage operations the upload stage
// needs, so tests can run without a live endpoint.
type ObjectStore interface {
	// UploadFile stores a local file under bucket/key.
	UploadFile(ctx context.Context, bucket, key, path string) error
	// EnsureVersioning turns bucket versioning on if it is not already.
	EnsureVersioning(ctx context.Context, bucket string) error
}
