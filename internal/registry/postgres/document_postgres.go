package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medstore/internal/model"
	"medstore/internal/registry"
	"medstore/internal/storage"
)

// DocumentPostgres is a PostgreSQL implementation of registry.DocumentRegistry.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres registry.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ registry.DocumentRegistry = (*DocumentPostgres)(nil)

const documentColumns = `id, clinic_id, patient_id, file_name, file_type, file_size,
		file_path, document_type, description, uploaded_by, created_at,
		storage_type, bucket_name, object_name, document_id, etag, migrated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one row into a MedicalDocument, converting the
// persisted wire strings into the closed enum types.
func scanDocument(row rowScanner) (*model.MedicalDocument, error) {
	var (
		d            model.MedicalDocument
		storageType  string
		documentType string
		migratedAt   sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.ClinicID,
		&d.PatientID,
		&d.FileName,
		&d.FileType,
		&d.FileSize,
		&d.FilePath,
		&documentType,
		&d.Description,
		&d.UploadedBy,
		&d.CreatedAt,
		&storageType,
		&d.BucketName,
		&d.ObjectName,
		&d.DocumentID,
		&d.ETag,
		&migratedAt,
	); err != nil {
		return nil, err
	}

	st, err := model.ParseStorageType(storageType)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", d.ID, err)
	}
	d.StorageType = st

	dt, err := model.ParseDocumentType(documentType)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", d.ID, err)
	}
	d.DocumentType = dt

	if migratedAt.Valid {
		t := migratedAt.Time
		d.MigratedAt = &t
	}
	return &d, nil
}

// Create inserts a new document record and returns the stored row.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.MedicalDocument) (*model.MedicalDocument, error) {
	q := `
		INSERT INTO medical_documents (id, clinic_id, patient_id, file_name, file_type,
			file_size, file_path, document_type, description, uploaded_by, created_at,
			storage_type, bucket_name, object_name, document_id, etag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.ClinicID,
		doc.PatientID,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		doc.FilePath,
		doc.DocumentType.String(),
		doc.Description,
		doc.UploadedBy,
		doc.CreatedAt,
		doc.StorageType.String(),
		doc.BucketName,
		doc.ObjectName,
		doc.DocumentID,
		doc.ETag,
	)
	return scanDocument(row)
}

// FindByID fetches a single document record by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.MedicalDocument, error) {
	q := `SELECT ` + documentColumns + ` FROM medical_documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByPatient returns all records for one patient of one clinic, newest first.
func (r *DocumentPostgres) ListByPatient(ctx context.Context, clinicID, patientID string) ([]model.MedicalDocument, error) {
	q := `
		SELECT ` + documentColumns + `
		FROM medical_documents
		WHERE clinic_id = $1 AND patient_id = $2
		ORDER BY created_at DESC, id DESC
	`
	return r.queryDocuments(ctx, q, clinicID, patientID)
}

// ListLocalByClinic returns the clinic's records still stored locally.
// Records already pointing at the object store are excluded so re-running a
// migration is safe.
func (r *DocumentPostgres) ListLocalByClinic(ctx context.Context, clinicID string) ([]model.MedicalDocument, error) {
	q := `
		SELECT ` + documentColumns + `
		FROM medical_documents
		WHERE clinic_id = $1 AND (storage_type = 'local' OR storage_type = '')
		ORDER BY created_at ASC, id ASC
	`
	return r.queryDocuments(ctx, q, clinicID)
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.MedicalDocument, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MedicalDocument, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateLocation rewrites a record's physical location after migration.
func (r *DocumentPostgres) UpdateLocation(ctx context.Context, id string, loc *storage.Location, migratedAt time.Time) error {
	const q = `
		UPDATE medical_documents
		SET storage_type = $2, bucket_name = $3, object_name = $4, file_path = $5,
			document_id = $6, etag = $7, migrated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		id,
		loc.StorageType.String(),
		loc.Bucket,
		loc.ObjectName,
		loc.ObjectName,
		loc.DocumentID,
		loc.ETag,
		migratedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a record by ID. It does not return an error if the row does
// not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM medical_documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
