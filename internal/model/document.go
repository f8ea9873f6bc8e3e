package model

import "time"

// MedicalDocument is the durable record of one stored patient document.
// The registry owns persistence of these rows; the storage layer populates
// the location fields at upload time and rewrites them during migration.
type MedicalDocument struct {
	ID           string       `json:"id"`
	ClinicID     string       `json:"clinic_id"`
	PatientID    string       `json:"patient_id"`
	FileName     string       `json:"file_name"` // original filename as uploaded
	FileType     string       `json:"file_type"` // MIME content type
	FileSize     int64        `json:"file_size"`
	FilePath     string       `json:"file_path"` // local disk path or object name
	DocumentType DocumentType `json:"document_type"`
	Description  string       `json:"description,omitempty"`
	UploadedBy   string       `json:"uploaded_by"`
	CreatedAt    time.Time    `json:"created_at"`

	// Physical location. BucketName is recomputed from ClinicID at access
	// time rather than trusted; it is stored for reconciliation only.
	StorageType StorageType `json:"storage_type"`
	BucketName  string      `json:"bucket_name,omitempty"`
	ObjectName  string      `json:"object_name,omitempty"`
	DocumentID  string      `json:"document_id,omitempty"`
	ETag        string      `json:"etag,omitempty"`
	MigratedAt  *time.Time  `json:"migrated_at,omitempty"`
}
