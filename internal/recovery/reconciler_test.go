package recovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trudido/remindd/internal/domain"
)

type fakeItemRepo struct {
	mu    sync.Mutex
	items []domain.ScheduledItem
}

func (r *fakeItemRepo) Upsert(_ context.Context, item *domain.ScheduledItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].TaskID == item.TaskID {
			r.items[i] = *item
			return nil
		}
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeItemRepo) Remove(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].TaskID == taskID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeItemRepo) All(_ context.Context) ([]domain.ScheduledItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScheduledItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *fakeItemRepo) has(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.TaskID == taskID {
			return true
		}
	}
	return false
}

// fakeSink records which tasks were re-armed or delivered.
type fakeSink struct {
	mu        sync.Mutex
	scheduled []string
	delivered []string
}

func (s *fakeSink) Schedule(_ context.Context, taskID, _, _ string, _ time.Time) (domain.DeliveryTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, taskID)
	return domain.TierExact, nil
}

func (s *fakeSink) DeliverNow(_ context.Context, item domain.ScheduledItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, item.TaskID)
	return nil
}

func newTestReconciler(items ...domain.ScheduledItem) (*Reconciler, *fakeItemRepo, *fakeSink, time.Time) {
	repo := &fakeItemRepo{items: items}
	sink := &fakeSink{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(repo, sink)
	r.now = func() time.Time { return now }
	return r, repo, sink, now
}

func item(taskID string, triggerAt time.Time) domain.ScheduledItem {
	return domain.ScheduledItem{TaskID: taskID, Title: "t", TriggerAt: triggerAt}
}

func TestRun_Startup(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r, repo, sink, _ := newTestReconciler(
		item("future", base.Add(time.Hour)),
		item("in-grace", base.Add(-10*time.Minute)),
		item("past-grace", base.Add(-2*time.Hour)),
		item("stale", base.Add(-13*time.Hour)),
	)

	res, err := r.Run(context.Background(), ModeStartup)
	require.NoError(t, err)

	assert.Equal(t, Result{Rearmed: 1, Delivered: 1, Dropped: 1, Skipped: 1}, res)
	assert.Equal(t, []string{"future"}, sink.scheduled)
	assert.Equal(t, []string{"in-grace"}, sink.delivered)
	assert.False(t, repo.has("stale"), "stale item is dropped from the store")
	assert.True(t, repo.has("past-grace"), "the middle band is left untouched at startup")
}

func TestRun_GraceBoundaries(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		age      time.Duration
		expected Result
	}{
		{"exactly at trigger", 0, Result{Delivered: 1}},
		{"exactly at grace edge", 30 * time.Minute, Result{Delivered: 1}},
		{"just past grace", 30*time.Minute + time.Second, Result{Skipped: 1}},
		{"exactly at stale cutoff", 12 * time.Hour, Result{Skipped: 1}},
		{"just past stale cutoff", 12*time.Hour + time.Second, Result{Dropped: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, _ := newTestReconciler(item("task", base.Add(-tt.age)))
			res, err := r.Run(context.Background(), ModeStartup)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestRun_BootTightensCutoff(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Two hours past due: skipped at startup, dropped after a reboot.
	r, repo, _, _ := newTestReconciler(item("task", base.Add(-2*time.Hour)))
	res, err := r.Run(context.Background(), ModeStartup)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)
	assert.True(t, repo.has("task"))

	res, err = r.Run(context.Background(), ModeBoot)
	require.NoError(t, err)
	assert.Equal(t, Result{Dropped: 1}, res)
	assert.False(t, repo.has("task"))
}

func TestRun_EmptyStore(t *testing.T) {
	r, _, sink, _ := newTestReconciler()
	res, err := r.Run(context.Background(), ModeStartup)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, sink.scheduled)
	assert.Empty(t, sink.delivered)
}
