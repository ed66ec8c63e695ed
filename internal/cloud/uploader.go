package cloud

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const defaultMaxAttempts = 5

// Uploader pushes raw dataset files into a dated object layout:
//
//	<prefix>/year=YYYY/month=MM/day=DD/<dataset>/<file>
type Uploader struct {
	store  ObjectStore
	bucket string
	prefix string

	maxAttempts int
	sleep       func(time.Duration)
}

// NewUploader creates an uploader targeting one bucket and prefix.
func NewUploader(store ObjectStore, bucket, prefix string) *Uploader {
	return &Uploader{
		store:       store,
		bucket:      bucket,
		prefix:      prefix,
		maxAttempts: defaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

// BuildKey returns the dated object key for a dataset file.
func BuildKey(prefix string, when time.Time, dataset, filename string) string {
	return fmt.Sprintf("%s/year=%s/month=%s/day=%s/%s/%s",
		prefix, when.Format("2006"), when.Format("01"), when.Format("02"), dataset, filename)
}

// UploadDatasets uploads <dataset>.csv for every dataset from dir and
// returns the manifest of dataset name to object key. A missing local file
// fails before any upload starts.
func (u *Uploader) UploadDatasets(ctx context.Context, dir string, datasets []string, when time.Time) (map[string]string, error) {
	files := make(map[string]string, len(datasets))
	for _, dataset := range datasets {
		path := filepath.Join(dir, dataset+".csv")
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing file for dataset %s: %s", dataset, path)
		}
		files[dataset] = path
	}

	manifest := make(map[string]string, len(datasets))
	for _, dataset := range datasets {
		path := files[dataset]
		key := BuildKey(u.prefix, when, dataset, filepath.Base(path))
		if err := u.uploadWithRetry(ctx, key, path); err != nil {
			return nil, err
		}
		manifest[dataset] = key
		log.Printf("[S3] %s -> s3://%s/%s", path, u.bucket, key)
	}

	return manifest, nil
}

// uploadWithRetry retries transient upload failures with exponential
// backoff: 2, 4, 8, 16 seconds, capped at 30.
func (u *Uploader) uploadWithRetry(ctx context.Context, key, path string) error {
	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		lastErr = u.store.UploadFile(ctx, u.bucket, key, path)
		if lastErr == nil {
			return nil
		}
		if attempt == u.maxAttempts {
			break
		}
		backoff := time.Duration(1<<attempt) * time.Second
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
		log.Printf("[S3] retry %d for %s: %v (sleep %s)", attempt, path, lastErr, backoff)
		u.sleep(backoff)
	}
	return fmt.Errorf("upload of %s failed after %d attempts: %w", path, u.maxAttempts, lastErr)
}
