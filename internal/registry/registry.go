package registry

// Package registry defines the persistence boundary for document records.
// The storage layer populates location fields at upload time and the
// migration routine rewrites them; everything else about the records belongs
// to the surrounding application.

import (
	"context"
	"time"

	"medstore/internal/model"
	"medstore/internal/storage"
)

// DocumentRegistry is the data-access contract for medical document records.
// Strictly persistence; no business logic.
type DocumentRegistry interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.MedicalDocument) (*model.MedicalDocument, error)

	// FindByID returns a document record by its ID.
	FindByID(ctx context.Context, id string) (*model.MedicalDocument, error)

	// ListByPatient returns all records for one patient of one clinic,
	// newest first.
	ListByPatient(ctx context.Context, clinicID, patientID string) ([]model.MedicalDocument, error)

	// ListLocalByClinic returns the clinic's records whose storage type is
	// "local" or unset. The migration routine uses it for discovery, so
	// already-migrated records must never appear here.
	ListLocalByClinic(ctx context.Context, clinicID string) ([]model.MedicalDocument, error)

	// UpdateLocation rewrites a record's physical location after migration
	// and stamps migrated_at.
	UpdateLocation(ctx context.Context, id string, loc *storage.Location, migratedAt time.Time) error

	// Delete removes a record by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
