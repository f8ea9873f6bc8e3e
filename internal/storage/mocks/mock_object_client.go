package mocks

import (
	"context"
	"io"
	"time"

	"medstore/internal/objstore"

	"github.com/stretchr/testify/mock"
)

type MockObjectClient struct {
	mock.Mock
}

func (m *MockObjectClient) EnsureBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockObjectClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectClient) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (objstore.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, r, size, contentType, metadata)
	if f, ok := args.Get(0).(func(string, string) objstore.ObjectInfo); ok {
		return f(bucket, key), args.Error(1)
	}
	return args.Get(0).(objstore.ObjectInfo), args.Error(1)
}

func (m *MockObjectClient) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectClient) Remove(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockObjectClient) Stat(ctx context.Context, bucket, key string) (objstore.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(objstore.ObjectInfo), args.Error(1)
}

func (m *MockObjectClient) List(ctx context.Context, bucket, prefix string, recursive bool) <-chan objstore.ObjectEntry {
	args := m.Called(ctx, bucket, prefix, recursive)
	if entries, ok := args.Get(0).([]objstore.ObjectEntry); ok {
		out := make(chan objstore.ObjectEntry, len(entries))
		for _, e := range entries {
			out <- e
		}
		close(out)
		return out
	}
	return args.Get(0).(<-chan objstore.ObjectEntry)
}
