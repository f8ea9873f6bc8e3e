package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"medstore/internal/config"
	"medstore/internal/metrics"
	"medstore/internal/model"
	"medstore/internal/storage"
)

// StorageStats aggregates one clinic's storage usage. Computed by a full
// listing scan, so it is O(objects in clinic); callers needing frequent
// stats should cache.
type StorageStats struct {
	TotalObjects          int   `json:"total_objects"`
	TotalSizeBytes        int64 `json:"total_size_bytes"`
	PatientsWithDocuments int   `json:"patients_with_documents"`
}

// UploadRequest carries the caller-supplied attributes of one medical
// document upload.
type UploadRequest struct {
	Filename     string
	Size         int64
	ContentType  string
	DocumentType model.DocumentType
	Description  string
	UploadedBy   string
}

// MedicalDocumentService is the tenant-aware façade over the active storage
// provider. One instance serves the whole process with a fixed backend
// choice; switching backends mid-life goes through the migration routine.
type MedicalDocumentService interface {
	// Upload stores a medical document and returns its location. Callers
	// must not create a document record if this fails.
	Upload(ctx context.Context, clinicID, patientID string, r io.Reader, req UploadRequest) (*storage.Location, error)

	// DownloadURL resolves a stored location to a download reference: a
	// presigned URL (object store) or an absolute local path. Safe to call
	// repeatedly; never mutates storage.
	DownloadURL(ctx context.Context, clinicID string, loc *storage.Location) (string, error)

	// Delete removes the document's physical bytes. Already-gone documents
	// report false with no error.
	Delete(ctx context.Context, clinicID string, loc *storage.Location) (bool, error)

	// ListPatientDocuments enumerates one patient's stored documents. May
	// race with concurrent uploads and miss a just-created document.
	ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]storage.DocumentInfo, error)

	// ClinicStorageStats scans the clinic's container and aggregates usage.
	ClinicStorageStats(ctx context.Context, clinicID string) (*StorageStats, error)
}

// medicalDocumentService is the concrete implementation.
type medicalDocumentService struct {
	provider       storage.Provider
	client         storage.ObjectClient   // nil when the local backend is active
	local          *storage.LocalProvider // nil when the object store is active
	useObjectStore bool
}

// NewMedicalDocumentService constructs the service with a fixed backend
// choice taken from cfg. client is the shared object-store handle; it may be
// nil when the local backend is selected. A non-nil m wraps the provider
// with operation counters.
func NewMedicalDocumentService(cfg config.StorageConfig, client storage.ObjectClient, m *metrics.StorageMetrics) MedicalDocumentService {
	s := &medicalDocumentService{useObjectStore: cfg.UseObjectStore}

	if cfg.UseObjectStore {
		s.client = client
		s.provider = storage.NewObjectStoreProvider(client, time.Duration(cfg.PresignTTLSec)*time.Second)
	} else {
		s.local = storage.NewLocalProvider(cfg.UploadDir)
		s.provider = s.local
	}

	if m != nil {
		s.provider = metrics.Instrument(s.provider, m, backendLabel(cfg.UseObjectStore))
	}
	return s
}

func backendLabel(useObjectStore bool) string {
	if useObjectStore {
		return string(model.StorageTypeObjectStore)
	}
	return string(model.StorageTypeLocal)
}

func validateTenant(clinicID, patientID string) error {
	if strings.TrimSpace(clinicID) == "" {
		return fmt.Errorf("%w: clinic id is required", storage.ErrInvalidArgument)
	}
	if strings.TrimSpace(patientID) == "" {
		return fmt.Errorf("%w: patient id is required", storage.ErrInvalidArgument)
	}
	return nil
}

func (s *medicalDocumentService) Upload(ctx context.Context, clinicID, patientID string, r io.Reader, req UploadRequest) (*storage.Location, error) {
	if err := validateTenant(clinicID, patientID); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", storage.ErrInvalidArgument)
	}

	docType := req.DocumentType
	if docType == "" {
		docType = model.DocumentTypeMedicalRecord
	} else if _, err := model.ParseDocumentType(docType.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}

	description := req.Description
	if description == "" {
		description = "Medical document: " + req.Filename
	}

	return s.provider.Upload(ctx, clinicID, patientID, r, storage.UploadOptions{
		Filename:    req.Filename,
		Size:        req.Size,
		ContentType: req.ContentType,
		Metadata: map[string]string{
			"document-type": docType.String(),
			"description":   description,
			"uploaded-by":   req.UploadedBy,
		},
	})
}

func (s *medicalDocumentService) DownloadURL(ctx context.Context, clinicID string, loc *storage.Location) (string, error) {
	if strings.TrimSpace(clinicID) == "" {
		return "", fmt.Errorf("%w: clinic id is required", storage.ErrInvalidArgument)
	}
	if loc == nil {
		return "", fmt.Errorf("%w: location is required", storage.ErrInvalidArgument)
	}
	return s.provider.DownloadRef(ctx, clinicID, loc)
}

func (s *medicalDocumentService) Delete(ctx context.Context, clinicID string, loc *storage.Location) (bool, error) {
	if strings.TrimSpace(clinicID) == "" {
		return false, fmt.Errorf("%w: clinic id is required", storage.ErrInvalidArgument)
	}
	if loc == nil {
		return false, fmt.Errorf("%w: location is required", storage.ErrInvalidArgument)
	}
	return s.provider.Delete(ctx, clinicID, loc)
}

func (s *medicalDocumentService) ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]storage.DocumentInfo, error) {
	if err := validateTenant(clinicID, patientID); err != nil {
		return nil, err
	}
	return s.provider.ListPatientDocuments(ctx, clinicID, patientID)
}

// ClinicStorageStats walks the clinic's container. The container name is
// recomputed from the clinic ID, like every other access path.
func (s *medicalDocumentService) ClinicStorageStats(ctx context.Context, clinicID string) (*StorageStats, error) {
	if strings.TrimSpace(clinicID) == "" {
		return nil, fmt.Errorf("%w: clinic id is required", storage.ErrInvalidArgument)
	}
	if s.useObjectStore {
		return s.objectStoreStats(ctx, clinicID)
	}
	return s.localStats(clinicID)
}

func (s *medicalDocumentService) objectStoreStats(ctx context.Context, clinicID string) (*StorageStats, error) {
	bucket, err := storage.BucketName(clinicID)
	if err != nil {
		return nil, err
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	stats := &StorageStats{}
	if !exists {
		return stats, nil
	}

	patients := make(map[string]struct{})
	for entry := range s.client.List(ctx, bucket, "", true) {
		if entry.Err != nil {
			return nil, fmt.Errorf("scan clinic storage: %w", entry.Err)
		}
		stats.TotalObjects++
		stats.TotalSizeBytes += entry.Size
		if pid := patientFromKey(entry.Key); pid != "" {
			patients[pid] = struct{}{}
		}
	}
	stats.PatientsWithDocuments = len(patients)
	return stats, nil
}

func (s *medicalDocumentService) localStats(clinicID string) (*StorageStats, error) {
	stats := &StorageStats{}
	patients := make(map[string]struct{})
	err := s.local.WalkClinic(clinicID, func(patientID string, info fs.FileInfo) error {
		stats.TotalObjects++
		stats.TotalSizeBytes += info.Size()
		patients[patientID] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan clinic storage: %w", err)
	}
	stats.PatientsWithDocuments = len(patients)
	return stats, nil
}

// patientFromKey extracts the patient ID from an object name of the form
// patients/{patient_id}/...; anything else yields "".
func patientFromKey(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) >= 2 && parts[0] == "patients" {
		return parts[1]
	}
	return ""
}
