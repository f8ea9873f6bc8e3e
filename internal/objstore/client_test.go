package objstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstore/internal/config"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ObjectStoreConfig
		wantErr string
	}{
		{
			name: "valid config",
			cfg: config.ObjectStoreConfig{
				Endpoint:  "localhost:9000",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
			},
		},
		{
			name:    "missing endpoint",
			cfg:     config.ObjectStoreConfig{AccessKey: "a", SecretKey: "s"},
			wantErr: "endpoint is required",
		},
		{
			name:    "missing access key",
			cfg:     config.ObjectStoreConfig{Endpoint: "localhost:9000", SecretKey: "s"},
			wantErr: "credentials are required",
		},
		{
			name:    "missing secret key",
			cfg:     config.ObjectStoreConfig{Endpoint: "localhost:9000", AccessKey: "a"},
			wantErr: "credentials are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, err := New(tt.cfg)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, cli)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, cli)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.True(t, IsNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, IsNotFound(errors.New("plain error")))
	assert.False(t, IsNotFound(nil))
}

func TestIsAlreadyOwned(t *testing.T) {
	assert.True(t, IsAlreadyOwned(minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}))
	assert.True(t, IsAlreadyOwned(minio.ErrorResponse{Code: "BucketAlreadyExists"}))
	assert.False(t, IsAlreadyOwned(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, IsAlreadyOwned(errors.New("plain error")))
}

func collectEntries(t *testing.T, out <-chan ObjectEntry) []ObjectEntry {
	t.Helper()
	entries := make([]ObjectEntry, 0)
	for {
		select {
		case e, ok := <-out:
			if !ok {
				return entries
			}
			entries = append(entries, e)
		case <-time.After(2 * time.Second):
			t.Fatal("listing channel never closed")
		}
	}
}

func TestForwardEntries(t *testing.T) {
	t.Run("forwards all entries then closes", func(t *testing.T) {
		objs := make(chan minio.ObjectInfo, 3)
		objs <- minio.ObjectInfo{Key: "patients/p1/documents/a.pdf", Size: 10}
		objs <- minio.ObjectInfo{Key: "patients/p1/documents/b.pdf", Size: 20}
		objs <- minio.ObjectInfo{Key: "patients/p2/documents/c.pdf", Size: 30}
		close(objs)

		entries := collectEntries(t, forwardEntries(context.Background(), objs))

		require.Len(t, entries, 3)
		assert.Equal(t, "patients/p1/documents/a.pdf", entries[0].Key)
		assert.Equal(t, int64(30), entries[2].Size)
		for _, e := range entries {
			assert.NoError(t, e.Err)
		}
	})

	t.Run("backend error is the final entry", func(t *testing.T) {
		objs := make(chan minio.ObjectInfo, 3)
		objs <- minio.ObjectInfo{Key: "patients/p1/documents/a.pdf", Size: 10}
		objs <- minio.ObjectInfo{Err: errors.New("listing interrupted")}
		objs <- minio.ObjectInfo{Key: "patients/p1/documents/never.pdf"}
		close(objs)

		entries := collectEntries(t, forwardEntries(context.Background(), objs))

		require.Len(t, entries, 2)
		assert.NoError(t, entries[0].Err)
		assert.EqualError(t, entries[1].Err, "listing interrupted")
	})

	t.Run("cancellation closes an abandoned listing", func(t *testing.T) {
		objs := make(chan minio.ObjectInfo, 100)
		for i := 0; i < 100; i++ {
			objs <- minio.ObjectInfo{Key: "patients/p1/documents/a.pdf", Size: 1}
		}
		close(objs)

		ctx, cancel := context.WithCancel(context.Background())
		out := forwardEntries(ctx, objs)

		// Take one entry, then walk away without draining.
		select {
		case <-out:
		case <-time.After(2 * time.Second):
			t.Fatal("no entry delivered")
		}
		cancel()

		// The forwarder must stop and close the channel; already-buffered
		// entries may still arrive first.
		entries := collectEntries(t, out)
		assert.Less(t, len(entries), 100)
	})
}

func TestLowerKeys(t *testing.T) {
	assert.Nil(t, lowerKeys(nil))
	assert.Nil(t, lowerKeys(map[string]string{}))
	assert.Equal(t, map[string]string{
		"document-id":       "doc-1",
		"original-filename": "Scan.PDF",
	}, lowerKeys(map[string]string{
		"Document-Id":       "doc-1",
		"Original-Filename": "Scan.PDF",
	}))
}
