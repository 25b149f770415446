package uploader

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fihircio/raikan-service/internal/services/objectstore"
	"github.com/fihircio/raikan-service/internal/types/uploads"
	"github.com/fihircio/raikan-service/internal/upload/transcode"
	"github.com/fihircio/raikan-service/internal/upload/validate"
)

// ObjectStore is the slice of the store client the orchestrator needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*uploads.StoredObject, error)
}

// File is one member of a batch upload.
type File struct {
	Name string
	Data []byte
}

// Service sequences validation, transcoding and storage for one logical
// upload. Each file gets at most one attempt at every step; the first failing
// step aborts that file.
type Service struct {
	validator  *validate.Validator
	transcoder *transcode.Transcoder
	store      ObjectStore
	now        func() time.Time
}

func New(v *validate.Validator, t *transcode.Transcoder, store ObjectStore) *Service {
	return &Service{
		validator:  v,
		transcoder: t,
		store:      store,
		now:        time.Now,
	}
}

// Upload processes a single file and returns the stored URLs and keys.
// The result's ContentType and Size describe the file as received, before
// re-encoding.
func (s *Service) Upload(ctx context.Context, data []byte, category uploads.Category, ownerID string) (*uploads.Result, error) {
	checked, err := s.validator.Validate(data, category)
	if err != nil {
		return nil, err
	}

	out, err := s.transcoder.Transcode(data, category, checked.DetectedMime)
	if err != nil {
		return nil, err
	}

	key := s.newObjectKey(category, ownerID, out.ContentType)

	stored, err := s.store.Put(ctx, key, out.Data, out.ContentType)
	if err != nil {
		return nil, err
	}

	result := &uploads.Result{
		URL:         stored.URL,
		Key:         stored.Key,
		ContentType: checked.DetectedMime,
		Size:        checked.Size,
	}

	if len(out.Thumbnails) > 0 {
		result.Thumbnails = make(map[string]string, len(out.Thumbnails))
		for _, thumb := range out.Thumbnails {
			thumbKey := objectstore.ThumbnailKey(key, thumb.Label)
			storedThumb, err := s.store.Put(ctx, thumbKey, thumb.Data, "image/webp")
			if err != nil {
				return nil, fmt.Errorf("failed to store thumbnail %s: %w", thumb.Label, err)
			}
			result.Thumbnails[thumb.Label] = storedThumb.URL
		}
	}

	return result, nil
}

// UploadMany processes a batch. Partial success is allowed: successes are
// returned together with the per-file failure messages, and err is non-nil
// only when every file failed.
func (s *Service) UploadMany(ctx context.Context, files []File, category uploads.Category, ownerID string) ([]*uploads.Result, []string, error) {
	var results []*uploads.Result
	var failures []string

	for _, f := range files {
		res, err := s.Upload(ctx, f.Data, category, ownerID)
		if err != nil {
			slog.Warn("batch upload: file failed",
				slog.String("filename", f.Name),
				slog.Int("size", len(f.Data)),
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()))
			failures = append(failures, fmt.Sprintf("%s: %s", f.Name, err.Error()))
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, failures, fmt.Errorf("all uploads failed: %s", strings.Join(failures, "; "))
	}
	return results, failures, nil
}

// newObjectKey builds {category}/{ownerId}/{epochMillis}-{randomHex}.{ext}.
func (s *Service) newObjectKey(category uploads.Category, ownerID, contentType string) string {
	suffix := make([]byte, 8)
	rand.Read(suffix)

	return fmt.Sprintf("%s/%s/%d-%s%s",
		category, ownerID, s.now().UnixMilli(), hex.EncodeToString(suffix), extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
