package model

// Package model contains the domain models for medical document storage.
// Pure data structures with no persistence or transport dependencies, so
// they can be shared across the storage, registry, and migration layers.

import "fmt"

// StorageType identifies which backend owns a document's physical bytes.
// The wire strings ("local", "minio") are the values the document registry
// has always persisted; do not change them without a data migration.
type StorageType string

const (
	StorageTypeLocal       StorageType = "local"
	StorageTypeObjectStore StorageType = "minio"
)

// ParseStorageType maps a registry wire string to a StorageType.
// The empty string maps to StorageTypeLocal: records created before the
// object store existed carry no storage_type at all.
func ParseStorageType(s string) (StorageType, error) {
	switch s {
	case "", string(StorageTypeLocal):
		return StorageTypeLocal, nil
	case string(StorageTypeObjectStore):
		return StorageTypeObjectStore, nil
	default:
		return "", fmt.Errorf("unknown storage type %q", s)
	}
}

// String returns the wire representation.
func (t StorageType) String() string { return string(t) }

// DocumentType is the fixed category a medical document belongs to.
type DocumentType string

const (
	DocumentTypeMedicalRecord DocumentType = "medical_record"
	DocumentTypeLabResult     DocumentType = "lab_result"
	DocumentTypeImage         DocumentType = "image"
	DocumentTypePrescription  DocumentType = "prescription"
	DocumentTypeOther         DocumentType = "other"
)

// ParseDocumentType maps a wire string to a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeMedicalRecord, DocumentTypeLabResult, DocumentTypeImage,
		DocumentTypePrescription, DocumentTypeOther:
		return DocumentType(s), nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

// String returns the wire representation.
func (t DocumentType) String() string { return string(t) }
