package blobstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

func seedBlob(t *testing.T, store BlobStore, recordID, fileName, contentType, content string) *BlobMetadata {
	t.Helper()
	meta := BlobMetadata{
		RecordID:    recordID,
		FileName:    fileName,
		ContentType: contentType,
		CreatedBy:   "test-user",
	}
	result, err := store.Upload(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("seedBlob: %v", err)
	}
	return result
}

func TestInMemoryBlobStore_Upload(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	content := "hello world"

	meta := BlobMetadata{
		RecordID:    "record-1",
		FileName:    "note.txt",
		ContentType: "text/plain",
		CreatedBy:   "user-1",
	}

	result, err := store.Upload(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if result.FileName != "note.txt" {
		t.Errorf("expected FileName=note.txt, got %s", result.FileName)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("expected Size=%d, got %d", len(content), result.Size)
	}
	if result.CreatedAt.IsZero() {
		t.Fatal("expected non-zero CreatedAt")
	}

	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
	if result.Hash != wantHash {
		t.Errorf("expected Hash=%s, got %s", wantHash, result.Hash)
	}
}

func TestInMemoryBlobStore_Upload_MissingFileName(t *testing.T) {
	store := NewInMemoryBlobStore(0)

	_, err := store.Upload(context.Background(), BlobMetadata{ContentType: "text/plain"}, strings.NewReader("x"))
	if !errors.Is(err, ErrMissingFileName) {
		t.Fatalf("expected ErrMissingFileName, got %v", err)
	}
}

func TestInMemoryBlobStore_Upload_InvalidContentType(t *testing.T) {
	store := NewInMemoryBlobStore(0)

	meta := BlobMetadata{FileName: "payload.bin", ContentType: "application/x-msdownload"}
	_, err := store.Upload(context.Background(), meta, strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Fatalf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestInMemoryBlobStore_Upload_TooLarge(t *testing.T) {
	store := NewInMemoryBlobStore(16)

	meta := BlobMetadata{FileName: "big.txt", ContentType: "text/plain"}
	_, err := store.Upload(context.Background(), meta, strings.NewReader(strings.Repeat("x", 17)))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestInMemoryBlobStore_DownloadRoundTrip(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	content := "scan bytes"
	blob := seedBlob(t, store, "record-1", "scan.png", "image/png", content)

	rc, meta, err := store.Download(context.Background(), blob.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	if string(got) != content {
		t.Errorf("expected %q, got %q", content, string(got))
	}
	if meta.ContentType != "image/png" {
		t.Errorf("expected image/png, got %s", meta.ContentType)
	}
}

func TestInMemoryBlobStore_Download_NotFound(t *testing.T) {
	store := NewInMemoryBlobStore(0)

	_, _, err := store.Download(context.Background(), "missing")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestInMemoryBlobStore_Delete(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	blob := seedBlob(t, store, "record-1", "note.txt", "text/plain", "x")

	if err := store.Delete(context.Background(), blob.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetMetadata(context.Background(), blob.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), blob.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on double delete, got %v", err)
	}
}

func TestInMemoryBlobStore_ListByRecord(t *testing.T) {
	store := NewInMemoryBlobStore(0)
	seedBlob(t, store, "record-1", "a.txt", "text/plain", "a")
	seedBlob(t, store, "record-1", "b.txt", "text/plain", "b")
	seedBlob(t, store, "record-2", "c.txt", "text/plain", "c")

	blobs, err := store.ListByRecord(context.Background(), "record-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blobs) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(blobs))
	}
	for _, b := range blobs {
		if b.RecordID != "record-1" {
			t.Errorf("unexpected record id %s", b.RecordID)
		}
	}
}

func TestInMemoryBlobStore_ConcurrentUploads(t *testing.T) {
	store := NewInMemoryBlobStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			meta := BlobMetadata{
				RecordID:    "record-1",
				FileName:    fmt.Sprintf("file-%d.txt", n),
				ContentType: "text/plain",
			}
			if _, err := store.Upload(context.Background(), meta, strings.NewReader("x")); err != nil {
				t.Errorf("upload %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	blobs, err := store.ListByRecord(context.Background(), "record-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blobs) != 20 {
		t.Fatalf("expected 20 blobs, got %d", len(blobs))
	}
}
