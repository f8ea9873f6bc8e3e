package migration

// Package migration moves a clinic's locally stored medical documents into
// the object store, one document at a time. Per-document failures are
// collected in the batch result instead of raised, so one bad document never
// blocks the rest; only failure to enumerate the clinic's records aborts.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"medstore/internal/model"
	"medstore/internal/registry"
	"medstore/internal/storage"
)

// Result summarizes one clinic's migration batch.
type Result struct {
	ClinicID string   `json:"clinic_id"`
	Migrated int      `json:"migrated_count"`
	Skipped  int      `json:"skipped_count"`
	Failed   int      `json:"failed_count"`
	Errors   []string `json:"errors"`
}

// Migrator re-homes documents from the local provider to the object store
// and re-points their registry records.
type Migrator struct {
	registry registry.DocumentRegistry
	local    *storage.LocalProvider
	remote   storage.Provider

	now func() time.Time
}

// NewMigrator constructs a migrator. remote must be the object-store
// provider; local reads and reclaims the legacy files.
func NewMigrator(reg registry.DocumentRegistry, local *storage.LocalProvider, remote storage.Provider) *Migrator {
	return &Migrator{
		registry: reg,
		local:    local,
		remote:   remote,
		now:      time.Now,
	}
}

// MigrateClinic migrates every still-local document of one clinic.
// Re-running it is safe: discovery excludes records already pointing at the
// object store, so a second run migrates zero documents.
func (m *Migrator) MigrateClinic(ctx context.Context, clinicID string) (*Result, error) {
	if strings.TrimSpace(clinicID) == "" {
		return nil, fmt.Errorf("%w: clinic id is required", storage.ErrInvalidArgument)
	}

	docs, err := m.registry.ListLocalByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("enumerate clinic documents: %w", err)
	}

	res := &Result{ClinicID: clinicID, Errors: []string{}}
	for i := range docs {
		m.migrateOne(ctx, clinicID, &docs[i], res)
	}

	logJSON(map[string]any{
		"component": "migration",
		"event":     "clinic_migration_done",
		"clinic_id": clinicID,
		"migrated":  res.Migrated,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
	})
	return res, nil
}

// migrateOne runs the per-document state machine: read, upload, re-point,
// reclaim. The record is only rewritten after the object-store copy exists.
func (m *Migrator) migrateOne(ctx context.Context, clinicID string, doc *model.MedicalDocument, res *Result) {
	src, size, err := m.local.Open(doc.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("document %s: source file missing: %s", doc.ID, doc.FilePath))
			return
		}
		res.Failed++
		res.Errors = append(res.Errors, fmt.Sprintf("document %s: read source: %v", doc.ID, err))
		return
	}

	loc, err := m.remote.Upload(ctx, clinicID, doc.PatientID, src, storage.UploadOptions{
		Filename:    doc.FileName,
		Size:        size,
		ContentType: doc.FileType,
		Metadata: map[string]string{
			"document-type": doc.DocumentType.String(),
			"description":   doc.Description,
			"uploaded-by":   doc.UploadedBy,
		},
	})
	_ = src.Close()
	if err != nil {
		// Record untouched; the document is picked up again on the next run.
		res.Failed++
		res.Errors = append(res.Errors, fmt.Sprintf("document %s: upload: %v", doc.ID, err))
		return
	}

	if err := m.registry.UpdateLocation(ctx, doc.ID, loc, m.now().UTC()); err != nil {
		// The object-store copy is a stray the next run overwrites; the
		// record still points at the valid local file.
		res.Failed++
		res.Errors = append(res.Errors, fmt.Sprintf("document %s: update record: %v", doc.ID, err))
		return
	}

	if _, err := m.local.RemoveFile(doc.FilePath); err != nil {
		// The record already points at the object-store copy; a stray local
		// file is a cleanup nuisance, not a migration failure.
		logJSON(map[string]any{
			"component": "migration",
			"event":     "local_reclaim_failed",
			"level":     "warn",
			"clinic_id": clinicID,
			"document":  doc.ID,
			"file_path": doc.FilePath,
			"error":     err.Error(),
		})
	}
	res.Migrated++
}
