package objstore

// Package objstore is a thin wrapper over an S3-compatible backend (MinIO,
// AWS S3, etc.). It exposes bucket/object primitives only and knows nothing
// about clinics or patients; tenant scoping happens one layer up.

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"medstore/internal/config"
)

// ObjectInfo contains basic information about a stored object.
// Metadata keys are normalized to lowercase.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// ObjectEntry is one element of a lazy listing. A backend error aborts the
// listing and is delivered as the final entry with Err set.
type ObjectEntry struct {
	ObjectInfo
	Err error
}

// Client is an S3-compatible object storage client. The bucket is chosen per
// call; a single Client is shared read-only across all tenants and is safe
// for concurrent use by multiple goroutines.
type Client struct {
	mc *minio.Client
}

// New creates an object storage client and validates the configuration.
// It does not touch the network; buckets are checked lazily per operation.
func New(cfg config.ObjectStoreConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object store credentials are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	return &Client{mc: cli}, nil
}

// EnsureBucket checks that the bucket exists and creates it on first use.
// Calling it twice never errors.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		// A concurrent EnsureBucket may have won the race.
		if IsAlreadyOwned(err) {
			return nil
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// BucketExists reports whether the bucket exists.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return c.mc.BucketExists(ctx, bucket)
}

// Put uploads an object using streaming I/O and returns the backend's
// integrity tag. On any error the caller must not assume the object exists.
func (c *Client) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (ObjectInfo, error) {
	info, err := c.mc.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		Metadata:     metadata,
	}, nil
}

// PresignGet returns a time-limited URL that performs an anonymous GET on the
// object. No long-lived credentials are embedded in the URL.
func (c *Client) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Remove deletes an object. A missing object or bucket is treated as success
// so deletes are idempotent.
func (c *Client) Remove(ctx context.Context, bucket, key string) error {
	err := c.mc.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err != nil && IsNotFound(err) {
		return nil
	}
	return err
}

// Stat fetches an object's info and user metadata without reading content.
func (c *Client) Stat(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	st, err := c.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          st.Key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     lowerKeys(st.UserMetadata),
	}, nil
}

// List returns a lazy sequence of object entries under prefix. The sequence
// is finite and not restartable; a fresh call re-lists from the start.
// Callers must drain the channel or cancel ctx; abandoning it while ctx is
// live leaks the forwarding goroutine.
func (c *Client) List(ctx context.Context, bucket, prefix string, recursive bool) <-chan ObjectEntry {
	objs := c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})
	return forwardEntries(ctx, objs)
}

// forwardEntries adapts the backend listing to ObjectEntry values. The small
// buffer lets short listings complete even when the consumer stops reading
// early; longer listings still need ctx cancellation on abandonment. The
// channel is always closed, after the final entry or on cancellation.
func forwardEntries(ctx context.Context, objs <-chan minio.ObjectInfo) <-chan ObjectEntry {
	out := make(chan ObjectEntry, 16)
	go func() {
		defer close(out)
		for obj := range objs {
			entry := ObjectEntry{Err: obj.Err}
			if obj.Err == nil {
				entry.ObjectInfo = ObjectInfo{
					Key:          obj.Key,
					Size:         obj.Size,
					ETag:         obj.ETag,
					ContentType:  obj.ContentType,
					LastModified: obj.LastModified,
				}
			}
			select {
			case out <- entry:
			case <-ctx.Done():
				return
			}
			if entry.Err != nil {
				return
			}
		}
	}()
	return out
}

// IsNotFound reports whether err is the backend's "object or bucket does not
// exist" response.
func IsNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}

// IsAlreadyOwned reports whether err is the backend's "bucket already exists
// and you own it" response.
func IsAlreadyOwned(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists"
}

func lowerKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
