package mocks

import (
	"context"
	"time"

	"medstore/internal/model"
	"medstore/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRegistry struct {
	mock.Mock
}

func (m *MockDocumentRegistry) Create(ctx context.Context, doc *model.MedicalDocument) (*model.MedicalDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicalDocument), args.Error(1)
}

func (m *MockDocumentRegistry) FindByID(ctx context.Context, id string) (*model.MedicalDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicalDocument), args.Error(1)
}

func (m *MockDocumentRegistry) ListByPatient(ctx context.Context, clinicID, patientID string) ([]model.MedicalDocument, error) {
	args := m.Called(ctx, clinicID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalDocument), args.Error(1)
}

func (m *MockDocumentRegistry) ListLocalByClinic(ctx context.Context, clinicID string) ([]model.MedicalDocument, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalDocument), args.Error(1)
}

func (m *MockDocumentRegistry) UpdateLocation(ctx context.Context, id string, loc *storage.Location, migratedAt time.Time) error {
	args := m.Called(ctx, id, loc, migratedAt)
	return args.Error(0)
}

func (m *MockDocumentRegistry) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
