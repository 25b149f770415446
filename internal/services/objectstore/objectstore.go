package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types/uploads"
)

// deleteChunkSize is the object-store API limit for one batch delete request.
const deleteChunkSize = 1000

// Object is a listing entry used by the cleanup sweep.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client wraps the S3-compatible store. A custom endpoint implies a
// MinIO/R2-style deployment, for which path-style addressing is used.
type Client struct {
	client       *minio.Client
	bucket       string
	publicDomain string
	useSSL       bool
}

// NewClient creates the store client and makes sure the bucket exists.
func NewClient(cfg *config.S3) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	c := &Client{
		client:       mc,
		bucket:       cfg.Bucket,
		publicDomain: strings.TrimSuffix(cfg.PublicDomain, "/"),
		useSSL:       cfg.UseSSL,
	}

	if err := c.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (c *Client) ensureBucket() error {
	ctx := context.Background()

	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Put stores one blob and returns its key and public URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (*uploads.StoredObject, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, storeError("failed to store object", key, err)
	}

	return &uploads.StoredObject{
		Key:         key,
		URL:         c.PublicURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return storeError("failed to delete object", key, err)
	}
	return nil
}

// DeleteMany removes objects in chunks of at most 1000 keys, continuing past
// partial failures. It returns cumulative success and failure counts.
func (c *Client) DeleteMany(ctx context.Context, keys []string) (succeeded, failed int) {
	for start := 0; start < len(keys); start += deleteChunkSize {
		end := start + deleteChunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		objectsCh := make(chan minio.ObjectInfo, len(chunk))
		for _, key := range chunk {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
		close(objectsCh)

		chunkFailed := 0
		for rErr := range c.client.RemoveObjects(ctx, c.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
			if rErr.Err != nil {
				chunkFailed++
			}
		}

		failed += chunkFailed
		succeeded += len(chunk) - chunkFailed
	}
	return succeeded, failed
}

// List returns every object currently in the bucket.
func (c *Client) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for info := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", info.Err)
		}
		objects = append(objects, Object{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	return objects, nil
}

// SignedURL issues a time-limited read URL for an otherwise private object.
func (c *Client) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", storeError("failed to sign url", key, err)
	}
	return u.String(), nil
}

// PublicURL builds the canonical URL for a key: the custom domain when one is
// configured, the store endpoint form otherwise.
func (c *Client) PublicURL(key string) string {
	if c.publicDomain != "" {
		return c.publicDomain + "/" + key
	}

	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}
	endpoint := strings.TrimPrefix(c.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, c.bucket, key)
}

// KeyFromURL extracts the object key from a stored URL, handling both the
// custom-domain form ({domain}/{key}) and the endpoint form
// ({endpoint}/{bucket}/{key}). Only the endpoint form carries a bucket
// segment; trimming it from a custom-domain URL would corrupt keys whose
// first segment happens to match the bucket name. Returns "" for URLs it
// cannot parse.
func (c *Client) KeyFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	if c.publicDomain != "" && strings.HasPrefix(raw, c.publicDomain+"/") {
		return strings.TrimPrefix(raw, c.publicDomain+"/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	key := strings.TrimPrefix(u.Path, "/")
	return strings.TrimPrefix(key, c.bucket+"/")
}

// ThumbnailKey derives the variant key for an original: the category prefix
// is swapped for "{category}-thumb-{label}", the rest of the key is kept.
func ThumbnailKey(key, label string) string {
	category, rest, found := strings.Cut(key, "/")
	if !found {
		return key
	}
	return category + "-thumb-" + label + "/" + rest
}

// storeError wraps a provider failure, echoing the provider's error code when
// it reports one (a region mismatch, for instance, is otherwise opaque).
func storeError(msg, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code != "" {
		return fmt.Errorf("%s %s: %s (%s): %w", msg, key, resp.Message, resp.Code, err)
	}
	return fmt.Errorf("%s %s: %w", msg, key, err)
}
