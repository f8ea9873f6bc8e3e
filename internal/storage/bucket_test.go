package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketName(t *testing.T) {
	tests := []struct {
		name     string
		clinicID string
		want     string
		wantErr  error
	}{
		{
			name:     "simple id",
			clinicID: "acme",
			want:     "clinic-acme",
		},
		{
			name:     "uppercase is lowered",
			clinicID: "Radiology42",
			want:     "clinic-radiology42",
		},
		{
			name:     "underscores become hyphens",
			clinicID: "st_mary_clinic",
			want:     "clinic-st-mary-clinic",
		},
		{
			name:     "spaces become hyphens",
			clinicID: "north side",
			want:     "clinic-north-side",
		},
		{
			name:     "mixed normalization",
			clinicID: "City_Health Center",
			want:     "clinic-city-health-center",
		},
		{
			name:     "empty id",
			clinicID: "",
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "whitespace-only id",
			clinicID: "   ",
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "illegal character",
			clinicID: "clinic/one",
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "unicode character",
			clinicID: "klinik-münchen",
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "trailing hyphen after normalization",
			clinicID: "acme_",
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "too long",
			clinicID: strings.Repeat("a", 60),
			wantErr:  ErrInvalidTenantName,
		},
		{
			name:     "exactly at the limit",
			clinicID: strings.Repeat("a", 56),
			want:     "clinic-" + strings.Repeat("a", 56),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BucketName(tt.clinicID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketName_Deterministic(t *testing.T) {
	first, err := BucketName("St_Mary Clinic")
	assert.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := BucketName("St_Mary Clinic")
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBucketName_NormalizedCollision(t *testing.T) {
	// Distinct raw IDs that normalize to the same container map together;
	// provisioning is expected to assign IDs that stay distinct afterwards.
	a, err := BucketName("st_mary")
	assert.NoError(t, err)
	b, err := BucketName("ST MARY")
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}
