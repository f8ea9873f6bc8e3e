package storage

// Package storage defines the uniform storage-provider capability set for
// medical documents and its two implementations: local filesystem and
// S3-compatible object store. Tenant isolation is structural, through
// deterministic per-clinic container naming, never through runtime locks.

import (
	"context"
	"io"
	"time"

	"medstore/internal/model"
	"medstore/internal/objstore"
)

// UploadOptions carry the caller-supplied attributes of one upload.
// Size should be the exact number of bytes if known; -1 lets the backend
// buffer/chunk as supported.
type UploadOptions struct {
	Filename    string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Location describes where one uploaded document physically lives. It is the
// output of an upload and is persisted on the document record by the caller.
type Location struct {
	StorageType model.StorageType `json:"storage_type"`
	Bucket      string            `json:"bucket_name"`
	ObjectName  string            `json:"object_name"`
	DocumentID  string            `json:"document_id"`
	ETag        string            `json:"etag,omitempty"`
	Size        int64             `json:"file_size"`
	UploadedAt  time.Time         `json:"upload_date"`
}

// DocumentInfo describes one document in a patient listing.
type DocumentInfo struct {
	ObjectName       string            `json:"object_name"`
	Size             int64             `json:"size"`
	LastModified     time.Time         `json:"last_modified"`
	ETag             string            `json:"etag,omitempty"`
	DocumentID       string            `json:"document_id,omitempty"`
	OriginalFilename string            `json:"original_filename,omitempty"`
	StorageType      model.StorageType `json:"storage_type"`
}

// Provider is the capability set every storage backend implements. The two
// variants honor the same contracts so the service can swap them with no
// caller-visible behavior change beyond the nature of the download reference
// (presigned URL vs. local path).
type Provider interface {
	// Upload stores the content for the given clinic/patient and returns its
	// location. Every upload gets a fresh document ID, so repeated filenames
	// never collide. On error no referencable state is left behind.
	Upload(ctx context.Context, clinicID, patientID string, r io.Reader, opt UploadOptions) (*Location, error)

	// DownloadRef resolves a location to a download reference: a presigned
	// URL (object store) or an absolute local path. It never mutates storage.
	// The container name is recomputed from clinicID, not read from loc.
	DownloadRef(ctx context.Context, clinicID string, loc *Location) (string, error)

	// Delete removes the document. Returns false (not an error) when the
	// document is already absent; both variants are idempotent.
	Delete(ctx context.Context, clinicID string, loc *Location) (bool, error)

	// ListPatientDocuments enumerates the documents stored for one patient
	// of one clinic. A missing container yields an empty list.
	ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]DocumentInfo, error)
}

// ObjectClient is the slice of the object-store client the object-store
// provider consumes. *objstore.Client satisfies it; tests substitute a mock.
type ObjectClient interface {
	EnsureBucket(ctx context.Context, bucket string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (objstore.ObjectInfo, error)
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, bucket, key string) error
	Stat(ctx context.Context, bucket, key string) (objstore.ObjectInfo, error)

	// List yields entries until exhaustion or an error entry. Consumers
	// must drain the channel or cancel ctx; implementations must close it.
	List(ctx context.Context, bucket, prefix string, recursive bool) <-chan objstore.ObjectEntry
}
