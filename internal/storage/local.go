package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"medstore/internal/model"
)

// LocalProvider stores documents on the local filesystem under
// {root}/{clinic container}/patients/{patient_id}/. The on-disk filename is
// the fresh document ID plus the original extension; the original filename
// lives only in the document record.
type LocalProvider struct {
	root string
}

// NewLocalProvider creates a local provider rooted at dir ("uploads" when
// empty). The directory is created lazily on first upload.
func NewLocalProvider(dir string) *LocalProvider {
	if dir == "" {
		dir = "uploads"
	}
	return &LocalProvider{root: dir}
}

var _ Provider = (*LocalProvider)(nil)

// Root returns the provider's root directory.
func (p *LocalProvider) Root() string { return p.root }

// clinicRoot derives the per-tenant directory from the clinic ID with the
// same naming rule the object store uses for buckets.
func (p *LocalProvider) clinicRoot(clinicID string) (string, string, error) {
	container, err := BucketName(clinicID)
	if err != nil {
		return "", "", err
	}
	return container, filepath.Join(p.root, container), nil
}

// Upload writes the content to disk. A failed write leaves no partial file
// behind.
func (p *LocalProvider) Upload(ctx context.Context, clinicID, patientID string, r io.Reader, opt UploadOptions) (*Location, error) {
	container, root, err := p.clinicRoot(clinicID)
	if err != nil {
		return nil, err
	}

	patientDir := filepath.Join(root, "patients", patientID)
	if err := os.MkdirAll(patientDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create patient directory: %v", ErrUploadFailed, err)
	}

	docID := uuid.NewString()
	name := docID + filepath.Ext(opt.Filename)
	path := filepath.Join(patientDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create file: %v", ErrUploadFailed, err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: write file: %v", ErrUploadFailed, err)
	}

	return &Location{
		StorageType: model.StorageTypeLocal,
		Bucket:      container,
		ObjectName:  filepath.ToSlash(filepath.Join("patients", patientID, name)),
		DocumentID:  docID,
		Size:        written,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// DownloadRef returns the absolute local path; the caller streams the file
// itself.
func (p *LocalProvider) DownloadRef(ctx context.Context, clinicID string, loc *Location) (string, error) {
	_, root, err := p.clinicRoot(clinicID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(root, filepath.FromSlash(loc.ObjectName))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}

// Delete removes the file if present; an already-absent file reports false
// without an error.
func (p *LocalProvider) Delete(ctx context.Context, clinicID string, loc *Location) (bool, error) {
	_, root, err := p.clinicRoot(clinicID)
	if err != nil {
		return false, err
	}
	return p.RemoveFile(filepath.Join(root, filepath.FromSlash(loc.ObjectName)))
}

// RemoveFile deletes a stored file by path, treating "already absent" as
// success. The migration routine uses it to reclaim migrated files whose
// registry records predate the per-clinic layout.
func (p *LocalProvider) RemoveFile(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return true, nil
}

// Open opens a stored file by the path recorded in the document registry and
// reports its size.
func (p *LocalProvider) Open(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// ListPatientDocuments enumerates the patient's directory, stat-ing each
// entry for size and modification time.
func (p *LocalProvider) ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]DocumentInfo, error) {
	_, root, err := p.clinicRoot(clinicID)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, "patients", patientID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DocumentInfo{}, nil
		}
		return nil, fmt.Errorf("read patient directory: %w", err)
	}

	docs := make([]DocumentInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Entry vanished between ReadDir and stat.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		docs = append(docs, DocumentInfo{
			ObjectName:   filepath.ToSlash(filepath.Join("patients", patientID, e.Name())),
			Size:         info.Size(),
			LastModified: info.ModTime(),
			DocumentID:   docIDFromName(e.Name()),
			StorageType:  model.StorageTypeLocal,
		})
	}
	return docs, nil
}

// WalkClinic visits every stored file of one clinic. The service uses it to
// compute storage statistics.
func (p *LocalProvider) WalkClinic(clinicID string, fn func(patientID string, info fs.FileInfo) error) error {
	_, root, err := p.clinicRoot(clinicID)
	if err != nil {
		return err
	}

	patientsDir := filepath.Join(root, "patients")
	return filepath.WalkDir(patientsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		return fn(filepath.Base(filepath.Dir(path)), info)
	})
}

// docIDFromName recovers the document ID from an on-disk filename, which is
// always {document_id}{extension}.
func docIDFromName(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
