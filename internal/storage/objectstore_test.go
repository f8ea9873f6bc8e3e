package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medstore/internal/model"
	"medstore/internal/objstore"
	"medstore/internal/storage"
	"medstore/internal/storage/mocks"
)

func TestObjectStoreProvider_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		clinicID   string
		setupMocks func(m *mocks.MockObjectClient) io.Reader
		wantErr    error
	}{
		{
			name:     "happy path",
			clinicID: "acme",
			setupMocks: func(m *mocks.MockObjectClient) io.Reader {
				r := strings.NewReader("hello world")
				m.On("EnsureBucket", ctx, "clinic-acme").Return(nil)
				m.On("Put", ctx, "clinic-acme", mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "patients/patient-1/documents/") &&
						strings.HasSuffix(key, "_scan.pdf")
				}), r, int64(11), "application/pdf", mock.MatchedBy(func(md map[string]string) bool {
					return md["clinic-id"] == "acme" &&
						md["patient-id"] == "patient-1" &&
						md["original-filename"] == "scan.pdf" &&
						md["document-id"] != "" &&
						md["upload-date"] != ""
				})).Return(func(bucket, key string) objstore.ObjectInfo {
					return objstore.ObjectInfo{Key: key, Size: 11, ETag: "etag-1"}
				}, nil)
				return r
			},
		},
		{
			name:     "invalid clinic id",
			clinicID: "bad/clinic",
			setupMocks: func(m *mocks.MockObjectClient) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: storage.ErrInvalidTenantName,
		},
		{
			name:     "bucket provisioning fails",
			clinicID: "acme",
			setupMocks: func(m *mocks.MockObjectClient) io.Reader {
				m.On("EnsureBucket", ctx, "clinic-acme").Return(errors.New("connection refused"))
				return strings.NewReader("x")
			},
			wantErr: storage.ErrStorageUnavailable,
		},
		{
			name:     "put fails",
			clinicID: "acme",
			setupMocks: func(m *mocks.MockObjectClient) io.Reader {
				m.On("EnsureBucket", ctx, "clinic-acme").Return(nil)
				m.On("Put", ctx, "clinic-acme", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(objstore.ObjectInfo{}, errors.New("write timeout"))
				return strings.NewReader("x")
			},
			wantErr: storage.ErrUploadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockObjectClient)
			r := tt.setupMocks(client)
			p := storage.NewObjectStoreProvider(client, time.Hour)

			loc, err := p.Upload(ctx, tt.clinicID, "patient-1", r, storage.UploadOptions{
				Filename:    "scan.pdf",
				Size:        11,
				ContentType: "application/pdf",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, loc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.StorageTypeObjectStore, loc.StorageType)
				assert.Equal(t, "clinic-acme", loc.Bucket)
				assert.NotEmpty(t, loc.DocumentID)
				assert.Equal(t, "etag-1", loc.ETag)
				assert.Equal(t, int64(11), loc.Size)
				assert.Contains(t, loc.ObjectName, loc.DocumentID)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestObjectStoreProvider_DownloadRef(t *testing.T) {
	ctx := context.Background()
	loc := &storage.Location{
		StorageType: model.StorageTypeObjectStore,
		ObjectName:  "patients/patient-1/documents/doc-1_scan.pdf",
	}

	tests := []struct {
		name       string
		setupMocks func(m *mocks.MockObjectClient)
		wantRef    string
		wantErr    error
	}{
		{
			name: "happy path",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{Key: loc.ObjectName}, nil)
				m.On("PresignGet", ctx, "clinic-acme", loc.ObjectName, 90*time.Second).
					Return("https://minio/clinic-acme/doc?sig=abc", nil)
			},
			wantRef: "https://minio/clinic-acme/doc?sig=abc",
		},
		{
			name: "object missing",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{}, storage.ErrNotFound)
			},
			wantErr: storage.ErrNotFound,
		},
		{
			name: "backend unreachable",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{}, errors.New("connection refused"))
			},
			wantErr: storage.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockObjectClient)
			tt.setupMocks(client)
			p := storage.NewObjectStoreProvider(client, 90*time.Second)

			ref, err := p.DownloadRef(ctx, "acme", loc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantRef, ref)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestObjectStoreProvider_DownloadRef_RecomputesBucket(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockObjectClient)

	// The stored location lies about its bucket; access still goes to the
	// container derived from the clinic ID.
	loc := &storage.Location{
		StorageType: model.StorageTypeObjectStore,
		Bucket:      "clinic-someone-else",
		ObjectName:  "patients/patient-1/documents/doc-1_a.pdf",
	}
	client.On("Stat", ctx, "clinic-acme", loc.ObjectName).
		Return(objstore.ObjectInfo{Key: loc.ObjectName}, nil)
	client.On("PresignGet", ctx, "clinic-acme", loc.ObjectName, storage.DefaultPresignTTL).
		Return("https://minio/clinic-acme/doc", nil)

	p := storage.NewObjectStoreProvider(client, 0)
	_, err := p.DownloadRef(ctx, "acme", loc)

	assert.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "Stat", ctx, "clinic-someone-else", mock.Anything)
}

func TestObjectStoreProvider_Delete(t *testing.T) {
	ctx := context.Background()
	loc := &storage.Location{
		StorageType: model.StorageTypeObjectStore,
		ObjectName:  "patients/patient-1/documents/doc-1_scan.pdf",
	}

	tests := []struct {
		name        string
		setupMocks  func(m *mocks.MockObjectClient)
		wantDeleted bool
		wantErr     error
	}{
		{
			name: "existing object",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{Key: loc.ObjectName}, nil)
				m.On("Remove", ctx, "clinic-acme", loc.ObjectName).Return(nil)
			},
			wantDeleted: true,
		},
		{
			name: "already absent",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{}, storage.ErrNotFound)
			},
			wantDeleted: false,
		},
		{
			name: "remove fails",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("Stat", ctx, "clinic-acme", loc.ObjectName).
					Return(objstore.ObjectInfo{Key: loc.ObjectName}, nil)
				m.On("Remove", ctx, "clinic-acme", loc.ObjectName).
					Return(errors.New("access denied"))
			},
			wantErr: storage.ErrDeleteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockObjectClient)
			tt.setupMocks(client)
			p := storage.NewObjectStoreProvider(client, time.Hour)

			deleted, err := p.Delete(ctx, "acme", loc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantDeleted, deleted)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestObjectStoreProvider_ListPatientDocuments(t *testing.T) {
	ctx := context.Background()
	modTime := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(m *mocks.MockObjectClient)
		wantDocs   int
		wantErr    bool
	}{
		{
			name: "bucket missing yields empty list",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("BucketExists", ctx, "clinic-acme").Return(false, nil)
			},
			wantDocs: 0,
		},
		{
			name: "entries enriched with metadata",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("BucketExists", ctx, "clinic-acme").Return(true, nil)
				m.On("List", ctx, "clinic-acme", "patients/patient-1/documents/", true).
					Return([]objstore.ObjectEntry{
						{ObjectInfo: objstore.ObjectInfo{
							Key: "patients/patient-1/documents/doc-1_a.pdf", Size: 10, ETag: "e1", LastModified: modTime,
						}},
						{ObjectInfo: objstore.ObjectInfo{
							Key: "patients/patient-1/documents/doc-2_b.pdf", Size: 20, ETag: "e2", LastModified: modTime,
						}},
					})
				m.On("Stat", ctx, "clinic-acme", "patients/patient-1/documents/doc-1_a.pdf").
					Return(objstore.ObjectInfo{Metadata: map[string]string{
						"document-id": "doc-1", "original-filename": "a.pdf",
					}}, nil)
				// Metadata fetch failing keeps the base listing entry.
				m.On("Stat", ctx, "clinic-acme", "patients/patient-1/documents/doc-2_b.pdf").
					Return(objstore.ObjectInfo{}, errors.New("stat fail"))
			},
			wantDocs: 2,
		},
		{
			name: "listing stream error",
			setupMocks: func(m *mocks.MockObjectClient) {
				m.On("BucketExists", ctx, "clinic-acme").Return(true, nil)
				m.On("List", ctx, "clinic-acme", "patients/patient-1/documents/", true).
					Return([]objstore.ObjectEntry{
						{Err: errors.New("listing interrupted")},
					})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockObjectClient)
			tt.setupMocks(client)
			p := storage.NewObjectStoreProvider(client, time.Hour)

			docs, err := p.ListPatientDocuments(ctx, "acme", "patient-1")

			if tt.wantErr {
				assert.Error(t, err)
				client.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			require.Len(t, docs, tt.wantDocs)
			if tt.wantDocs == 2 {
				assert.Equal(t, "doc-1", docs[0].DocumentID)
				assert.Equal(t, "a.pdf", docs[0].OriginalFilename)
				assert.Empty(t, docs[1].DocumentID)
				assert.Equal(t, int64(20), docs[1].Size)
				assert.Equal(t, model.StorageTypeObjectStore, docs[0].StorageType)
			}
			client.AssertExpectations(t)
		})
	}
}
