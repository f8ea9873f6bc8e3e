package metrics

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"medstore/internal/storage"
)

// StorageMetrics holds the prometheus collectors for storage operations.
type StorageMetrics struct {
	operationCount *prometheus.CounterVec
	uploadedBytes  prometheus.Counter
}

// NewStorageMetrics creates the collectors and registers them with reg.
func NewStorageMetrics(reg prometheus.Registerer) (*StorageMetrics, error) {
	m := &StorageMetrics{
		operationCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medstore_storage_operations_total",
				Help: "Total number of storage provider operations.",
			},
			[]string{"operation", "backend", "status"},
		),
		uploadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "medstore_storage_uploaded_bytes_total",
				Help: "Total bytes accepted by document uploads.",
			},
		),
	}

	if err := reg.Register(m.operationCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.uploadedBytes); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *StorageMetrics) observe(operation, backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationCount.WithLabelValues(operation, backend, status).Inc()
}

// instrumentedProvider counts every provider call without changing results.
type instrumentedProvider struct {
	next    storage.Provider
	metrics *StorageMetrics
	backend string
}

// Instrument wraps a storage provider with operation counters. backend is
// the label value identifying the active variant.
func Instrument(next storage.Provider, m *StorageMetrics, backend string) storage.Provider {
	return &instrumentedProvider{next: next, metrics: m, backend: backend}
}

var _ storage.Provider = (*instrumentedProvider)(nil)

func (p *instrumentedProvider) Upload(ctx context.Context, clinicID, patientID string, r io.Reader, opt storage.UploadOptions) (*storage.Location, error) {
	loc, err := p.next.Upload(ctx, clinicID, patientID, r, opt)
	p.metrics.observe("upload", p.backend, err)
	if err == nil {
		p.metrics.uploadedBytes.Add(float64(loc.Size))
	}
	return loc, err
}

func (p *instrumentedProvider) DownloadRef(ctx context.Context, clinicID string, loc *storage.Location) (string, error) {
	ref, err := p.next.DownloadRef(ctx, clinicID, loc)
	p.metrics.observe("download_ref", p.backend, err)
	return ref, err
}

func (p *instrumentedProvider) Delete(ctx context.Context, clinicID string, loc *storage.Location) (bool, error) {
	deleted, err := p.next.Delete(ctx, clinicID, loc)
	p.metrics.observe("delete", p.backend, err)
	return deleted, err
}

func (p *instrumentedProvider) ListPatientDocuments(ctx context.Context, clinicID, patientID string) ([]storage.DocumentInfo, error) {
	docs, err := p.next.ListPatientDocuments(ctx, clinicID, patientID)
	p.metrics.observe("list", p.backend, err)
	return docs, err
}
