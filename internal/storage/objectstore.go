package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"medstore/internal/model"
	"medstore/internal/objstore"
)

const (
	metaClinicID         = "clinic-id"
	metaPatientID        = "patient-id"
	metaOriginalFilename = "original-filename"
	metaUploadDate       = "upload-date"
	metaDocumentID       = "document-id"
)

// DefaultPresignTTL is the lifetime of download URLs when none is configured.
const DefaultPresignTTL = time.Hour

// ObjectStoreProvider stores documents in an S3-compatible backend, one
// bucket per clinic. Every object is tagged with identifying metadata so
// storage contents can be reconciled against the document registry even if
// the registry is lost.
type ObjectStoreProvider struct {
	client     ObjectClient
	presignTTL time.Duration
}

// NewObjectStoreProvider creates an object-store provider. A non-positive
// presignTTL falls back to DefaultPresignTTL.
func NewObjectStoreProvider(client ObjectClient, presignTTL time.Duration) *ObjectStoreProvider {
	if presignTTL <= 0 {
		presignTTL = DefaultPresignTTL
	}
	return &ObjectStoreProvider{client: client, presignTTL: presignTTL}
}

var _ Provider = (*ObjectStoreProvider)(nil)

// patientPrefix is the object-name prefix for one patient's documents.
func patientPrefix(patientID string) string {
	return fmt.Sprintf("patients/%s/documents/", patientID)
}

// Upload pushes the content into the clinic's bucket, creating the bucket on
// first use.
func (p *ObjectStoreProvider) Upload(ctx context.Context, clinicID, patientID string, r io.Reader, opt UploadOptions) (*Location, error) {
	bucket, err := BucketName(clinicID)
	if err != nil {
		return nil, err
	}

	if err := p.client.EnsureBucket(ctx, bucket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	docID := uuid.NewString()
	objectName := patientPrefix(patientID) + docID + "_" + opt.Filename
	uploadedAt := time.Now().UTC()

	metadata := map[string]string{
		metaClinicID:         clinicID,
		metaPatientID:        patientID,
		metaOriginalFilename: opt.Filename,
		metaUploadDate:       uploadedAt.Format(time.RFC3339),
		metaDocumentID:       docID,
	}
	for k, v := range opt.Metadata {
		metadata[k] = v
	}

	info, err := p.client.Put(ctx, bucket, objectName, r, opt.Size, opt.ContentType, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &Location{
		StorageType: model.StorageTypeObjectStore,
		Bucket:      bucket,
		ObjectName:  objectName,
		DocumentID:  docID,
		ETag:        info.ETag,
		Size:        info.Size,
		UploadedAt:  uploadedAt,
	}, nil
}

// DownloadRef returns a presigned URL for the document. The caller must
// redirect to it, not proxy it.
func (p *ObjectStoreProvider) DownloadRef(ctx context.Context, clinicID string, loc *Location) (string, error) {
	bucket, err := BucketName(clinicID)
	if err != nil {
		return "", err
	}

	if _, err := p.client.Stat(ctx, bucket, loc.ObjectName); err != nil {
		if objstoreNotFound(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, loc.ObjectName)
		}
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	url, err := p.client.PresignGet(ctx, bucket, loc.ObjectName, p.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign download url: %w", err)
	}
	return url, nil
}

// Delete removes the object, mapping "not found" to a successful no-op to
// match the local variant's idempotence guarantee.
func (p *ObjectStoreProvider) Delete(ctx context.Context, clinicID string, loc *Location) (bool, error) {
	bucket, err := BucketName(clinicID)
	if err != nil {
		return false, err
	}

	if _, err := p.client.Stat(ctx, bucket, loc.ObjectName); err != nil {
		if objstoreNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	if err := p.client.Remove(ctx, bucket, loc.ObjectName); err != nil {
		if objstoreNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return true, nil
}

// ListPatientDocuments lists the patient's objects, enriching each entry
// with its stored metadata. Entries whose metadata cannot be fetched are
// still returned with base listing info.
func (p *ObjectStoreProvider) ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]DocumentInfo, error) {
	bucket, err := BucketName(clinicID)
	if err != nil {
		return nil, err
	}

	exists, err := p.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		return []DocumentInfo{}, nil
	}

	docs := make([]DocumentInfo, 0)
	for entry := range p.client.List(ctx, bucket, patientPrefix(patientID), true) {
		if entry.Err != nil {
			if objstoreNotFound(entry.Err) {
				return []DocumentInfo{}, nil
			}
			return nil, fmt.Errorf("list patient documents: %w", entry.Err)
		}

		doc := DocumentInfo{
			ObjectName:   entry.Key,
			Size:         entry.Size,
			LastModified: entry.LastModified,
			ETag:         entry.ETag,
			StorageType:  model.StorageTypeObjectStore,
		}
		if st, err := p.client.Stat(ctx, bucket, entry.Key); err == nil {
			doc.DocumentID = st.Metadata[metaDocumentID]
			doc.OriginalFilename = st.Metadata[metaOriginalFilename]
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// objstoreNotFound matches both the backend's wire-level "no such object"
// responses and the package sentinel, so fakes can signal absence too.
func objstoreNotFound(err error) bool {
	return objstore.IsNotFound(err) || errors.Is(err, ErrNotFound)
}
