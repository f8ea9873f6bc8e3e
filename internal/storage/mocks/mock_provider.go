package mocks

import (
	"context"
	"io"

	"medstore/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Upload(ctx context.Context, clinicID, patientID string, r io.Reader, opt storage.UploadOptions) (*storage.Location, error) {
	args := m.Called(ctx, clinicID, patientID, r, opt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Location), args.Error(1)
}

func (m *MockProvider) DownloadRef(ctx context.Context, clinicID string, loc *storage.Location) (string, error) {
	args := m.Called(ctx, clinicID, loc)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Delete(ctx context.Context, clinicID string, loc *storage.Location) (bool, error) {
	args := m.Called(ctx, clinicID, loc)
	return args.Bool(0), args.Error(1)
}

func (m *MockProvider) ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]storage.DocumentInfo, error) {
	args := m.Called(ctx, clinicID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DocumentInfo), args.Error(1)
}
