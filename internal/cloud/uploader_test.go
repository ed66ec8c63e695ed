package cloud

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubStore struct {
	uploads    []string // bucket/key pairs
	failsLeft  int
	versioning []string
}

func (s *stubStore) UploadFile(ctx context.Context, bucket, key, path string) error {
	if s.failsLeft > 0 {
		s.failsLeft--
		return errors.New("timeout")
	}
	s.uploads = append(s.uploads, bucket+"/"+key)
	return nil
}

func (s *stubStore) EnsureVersioning(ctx context.Context, bucket string) error {
	s.versioning = append(s.versioning, bucket)
	return nil
}

func TestBuildKey(t *testing.T) {
	when := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	got := BuildKey("raw", when, "products", "products.csv")
	want := "raw/year=2025/month=01/day=15/products/products.csv"
	if got != want {
		t.Fatalf("BuildKey = %q, want %q", got, want)
	}
}

func TestUploadDatasetsBuildsManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"customers.csv", "products.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("id\n1\n"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	store := &stubStore{}
	uploader := NewUploader(store, "shopflow-raw", "raw")
	when := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	manifest, err := uploader.UploadDatasets(context.Background(), dir, []string{"customers", "products"}, when)
	if err != nil {
		t.Fatalf("upload returned error: %v", err)
	}

	if manifest["products"] != "raw/year=2025/month=01/day=15/products/products.csv" {
		t.Fatalf("unexpected manifest entry: %q", manifest["products"])
	}
	if len(store.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %v", store.uploads)
	}
}

func TestUploadDatasetsMissingFileFailsBeforeUploading(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "customers.csv"), []byte("id\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := &stubStore{}
	uploader := NewUploader(store, "shopflow-raw", "raw")

	_, err := uploader.UploadDatasets(context.Background(), dir, []string{"customers", "products"}, time.Now().UTC())
	if err == nil || !strings.Contains(err.Error(), "products") {
		t.Fatalf("expected missing file error naming the dataset, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("expected no uploads after precondition failure, got %v", store.uploads)
	}
}

func TestUploadRetriesWithBackoff(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "products.csv"), []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := &stubStore{failsLeft: 2}
	uploader := NewUploader(store, "shopflow-raw", "raw")

	var slept []time.Duration
	uploader.sleep = func(d time.Duration) { slept = append(slept, d) }

	if _, err := uploader.UploadDatasets(context.Background(), dir, []string{"products"}, time.Now().UTC()); err != nil {
		t.Fatalf("upload should succeed after retries: %v", err)
	}

	if len(slept) != 2 || slept[0] != 2*time.Second || slept[1] != 4*time.Second {
		t.Fatalf("expected backoff of 2s then 4s, got %v", slept)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected one successful upload, got %v", store.uploads)
	}
}

func TestUploadGivesUpAfterMaxAttempts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "products.csv"), []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := &stubStore{failsLeft: 100}
	uploader := NewUploader(store, "shopflow-raw", "raw")
	uploader.sleep = func(time.Duration) {}

	_, err := uploader.UploadDatasets(context.Background(), dir, []string{"products"}, time.Now().UTC())
	if err == nil || !strings.Contains(err.Error(), "after 5 attempts") {
		t.Fatalf("expected exhausted retries error, got %v", err)
	}
}
