package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fihircio/raikan-service/internal/config"
)

// countingStorage counts sweep invocations; every job run reads the
// referenced-URL set exactly once.
type countingStorage struct {
	calls int
}

func (c *countingStorage) GetReferencedMediaURLs() ([]string, error) {
	c.calls++
	return nil, nil
}

func (c *countingStorage) GetInvitationMediaURLs(string) ([]string, error) {
	return nil, nil
}

func testSchedulerConfig() *config.Cleanup {
	return &config.Cleanup{
		DailyAt:   "02:00",
		WeeklyAt:  "03:00",
		WeeklyDay: "Sunday",
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *countingStorage) {
	t.Helper()

	storage := &countingStorage{}
	job := New(storage, &fakeStore{}, config.DefaultThumbnails(), time.Hour, testLogger())

	s, err := NewScheduler(job, testSchedulerConfig(), testLogger())
	require.NoError(t, err)
	return s, storage
}

func TestNewScheduler_RejectsBadConfig(t *testing.T) {
	job := newTestJob(&fakeStorage{}, &fakeStore{})

	cfg := testSchedulerConfig()
	cfg.WeeklyDay = "Someday"
	_, err := NewScheduler(job, cfg, testLogger())
	assert.Error(t, err)

	cfg = testSchedulerConfig()
	cfg.DailyAt = "25:99"
	_, err = NewScheduler(job, cfg, testLogger())
	assert.Error(t, err)

	cfg = testSchedulerConfig()
	cfg.WeeklyAt = "noon"
	_, err = NewScheduler(job, cfg, testLogger())
	assert.Error(t, err)
}

func TestScheduler_DailyFiresOncePerDay(t *testing.T) {
	s, storage := newTestScheduler(t)
	ctx := context.Background()

	// 2026-04-06 is a Monday.
	monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

	s.tick(ctx, monday.Add(1*time.Hour+59*time.Minute))
	assert.Zero(t, storage.calls, "must not fire before the scheduled minute")

	s.tick(ctx, monday.Add(2*time.Hour))
	assert.Equal(t, 1, storage.calls)

	// Two polls inside the same minute fire once.
	s.tick(ctx, monday.Add(2*time.Hour+30*time.Second))
	assert.Equal(t, 1, storage.calls)

	s.tick(ctx, monday.AddDate(0, 0, 1).Add(2*time.Hour))
	assert.Equal(t, 2, storage.calls, "next day fires again")
}

func TestScheduler_WeeklyFiresOnConfiguredDayOnly(t *testing.T) {
	s, storage := newTestScheduler(t)
	ctx := context.Background()

	// 2026-04-05 is a Sunday.
	sunday := time.Date(2026, 4, 5, 3, 0, 0, 0, time.UTC)
	monday := sunday.AddDate(0, 0, 1)

	s.tick(ctx, monday)
	assert.Zero(t, storage.calls, "weekly must not fire on a Monday")

	s.tick(ctx, sunday)
	assert.Equal(t, 1, storage.calls)

	s.tick(ctx, sunday.Add(20*time.Second))
	assert.Equal(t, 1, storage.calls, "same minute fires once")
}

func TestScheduler_DailyAndWeeklyAreIndependent(t *testing.T) {
	s, storage := newTestScheduler(t)
	ctx := context.Background()

	sunday := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)

	s.tick(ctx, sunday.Add(2*time.Hour))
	assert.Equal(t, 1, storage.calls, "daily at 02:00")

	s.tick(ctx, sunday.Add(3*time.Hour))
	assert.Equal(t, 2, storage.calls, "weekly at 03:00 on Sunday")
}
