package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/services/objectstore"
)

// Storage is the slice of the record store the job reads. The URL fields on
// invitations and gallery rows are the only durable references to stored
// objects.
type Storage interface {
	GetReferencedMediaURLs() ([]string, error)
	GetInvitationMediaURLs(invitationID string) ([]string, error)
}

// ObjectStore is the slice of the store client the job needs.
type ObjectStore interface {
	List(ctx context.Context) ([]objectstore.Object, error)
	DeleteMany(ctx context.Context, keys []string) (succeeded, failed int)
	KeyFromURL(url string) string
}

// Stats summarizes one cleanup run.
type Stats struct {
	Kind      string        `json:"kind"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Scanned   int           `json:"scanned"`
	Deleted   int           `json:"deleted"`
	Failed    int           `json:"failed"`
	Errors    []string      `json:"errors,omitempty"`
}

// Job removes stored objects no longer referenced by any live record. Runs
// are single-flight within the process: a trigger that arrives while a run is
// in progress is skipped and reports zero work done.
type Job struct {
	storage Storage
	store   ObjectStore
	labels  []string
	minAge  time.Duration
	logger  *slog.Logger
	now     func() time.Time
	running atomic.Bool
}

func New(storage Storage, store ObjectStore, variants []config.Variant, minAge time.Duration, logger *slog.Logger) *Job {
	labels := make([]string, 0, len(variants))
	for _, v := range variants {
		labels = append(labels, v.Label)
	}

	return &Job{
		storage: storage,
		store:   store,
		labels:  labels,
		minAge:  minAge,
		logger:  logger,
		now:     time.Now,
	}
}

// RunDaily performs the orphan sweep plus the temp-file pass.
func (j *Job) RunDaily(ctx context.Context) *Stats {
	return j.run(ctx, "daily")
}

// RunWeekly performs the daily routine plus the thumbnail and storage
// optimization passes.
func (j *Job) RunWeekly(ctx context.Context) *Stats {
	return j.run(ctx, "weekly")
}

// Trigger is the manual entry point for administrative invocation.
func (j *Job) Trigger(ctx context.Context, kind string) (*Stats, error) {
	switch kind {
	case "daily":
		return j.RunDaily(ctx), nil
	case "weekly":
		return j.RunWeekly(ctx), nil
	}
	return nil, fmt.Errorf("unknown cleanup kind %q", kind)
}

func (j *Job) run(ctx context.Context, kind string) *Stats {
	stats := &Stats{Kind: kind, StartedAt: j.now()}

	if !j.running.CompareAndSwap(false, true) {
		stats.Errors = append(stats.Errors, "Cleanup already in progress")
		j.logger.Info("cleanup run skipped, previous run still in progress",
			slog.String("kind", kind))
		return stats
	}
	defer j.running.Store(false)

	j.logger.Info("cleanup run started", slog.String("kind", kind))

	// Sub-tasks accumulate errors and keep going; an unattended job has
	// nobody to surface a mid-run abort to.
	j.sweepOrphans(ctx, stats)
	j.cleanTempFiles(ctx, stats)

	if kind == "weekly" {
		j.optimizeThumbnails(ctx, stats)
		j.optimizeStorage(ctx, stats)
	}

	stats.Duration = j.now().Sub(stats.StartedAt)

	j.logger.Info("cleanup run completed",
		slog.String("kind", kind),
		slog.Int("scanned", stats.Scanned),
		slog.Int("deleted", stats.Deleted),
		slog.Int("failed", stats.Failed),
		slog.Int("errors", len(stats.Errors)),
		slog.Duration("duration", stats.Duration))

	return stats
}

// sweepOrphans deletes objects that no live record references and that are
// older than the safety window. The age gate is the only guard against
// racing with an upload whose reference has not been written yet.
func (j *Job) sweepOrphans(ctx context.Context, stats *Stats) {
	referenced, err := j.referencedKeys()
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("failed to build referenced key set: %s", err))
		return
	}

	objects, err := j.store.List(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("failed to list bucket: %s", err))
		return
	}
	stats.Scanned = len(objects)

	cutoff := j.now().Add(-j.minAge)
	var candidates []string
	for _, obj := range objects {
		if referenced[obj.Key] {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		candidates = append(candidates, obj.Key)
	}

	if len(candidates) == 0 {
		return
	}

	succeeded, failed := j.store.DeleteMany(ctx, candidates)
	stats.Deleted += succeeded
	stats.Failed += failed
	if failed > 0 {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%d orphan deletions failed", failed))
	}
}

// referencedKeys builds the keep-set: every key referenced by a live record,
// plus the synthesized thumbnail-variant keys for each of them.
func (j *Job) referencedKeys() (map[string]bool, error) {
	urls, err := j.storage.GetReferencedMediaURLs()
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(urls)*(1+len(j.labels)))
	for _, u := range urls {
		key := j.store.KeyFromURL(u)
		if key == "" {
			continue
		}
		referenced[key] = true
		for _, label := range j.labels {
			referenced[objectstore.ThumbnailKey(key, label)] = true
		}
	}
	return referenced, nil
}

// DeleteInvitationFiles immediately removes every object owned by one
// invitation: gallery images, QR code and background, plus their thumbnail
// variants. Invoked when an invitation is deleted, independent of the
// scheduled sweep.
func (j *Job) DeleteInvitationFiles(ctx context.Context, invitationID string) (succeeded, failed int, err error) {
	urls, err := j.storage.GetInvitationMediaURLs(invitationID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to collect invitation media: %w", err)
	}

	var keys []string
	for _, u := range urls {
		key := j.store.KeyFromURL(u)
		if key == "" {
			continue
		}
		keys = append(keys, key)
		for _, label := range j.labels {
			keys = append(keys, objectstore.ThumbnailKey(key, label))
		}
	}

	if len(keys) == 0 {
		return 0, 0, nil
	}

	succeeded, failed = j.store.DeleteMany(ctx, keys)

	j.logger.Info("deleted invitation files",
		slog.String("invitation_id", invitationID),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed))

	return succeeded, failed, nil
}

// cleanTempFiles is a placeholder pass: the upload pipeline holds files in
// memory only, so there is nothing on disk to reap yet.
func (j *Job) cleanTempFiles(ctx context.Context, stats *Stats) {
	j.logger.Debug("temp file pass: nothing to do")
}

// optimizeThumbnails is a placeholder for re-deriving thumbnails whose
// variant configuration changed since upload.
func (j *Job) optimizeThumbnails(ctx context.Context, stats *Stats) {
	j.logger.Debug("thumbnail optimization pass: nothing to do")
}

// optimizeStorage is a placeholder for storage-class transitions.
func (j *Job) optimizeStorage(ctx context.Context, stats *Stats) {
	j.logger.Debug("storage optimization pass: nothing to do")
}
