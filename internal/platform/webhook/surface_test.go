package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedEvent struct {
	Event        string   `json:"event"`
	TaskID       string   `json:"task_id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Actions      []string `json:"actions"`
	Count        int      `json:"count"`
	SampleTitles []string `json:"sample_titles"`
}

func newReceiver(t *testing.T, status int) (*httptest.Server, func() []receivedEvent) {
	t.Helper()
	var mu sync.Mutex
	var events []receivedEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev receivedEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []receivedEvent {
		mu.Lock()
		defer mu.Unlock()
		out := make([]receivedEvent, len(events))
		copy(out, events)
		return out
	}
}

func TestNewSurface_EnabledRequiresURL(t *testing.T) {
	_, err := NewSurface(Config{Enabled: true})
	assert.Error(t, err)

	_, err = NewSurface(Config{Enabled: false})
	assert.NoError(t, err)
}

func TestRender(t *testing.T) {
	server, events := newReceiver(t, http.StatusOK)
	surface, err := NewSurface(Config{Enabled: true, URL: server.URL})
	require.NoError(t, err)

	require.NoError(t, surface.Render(context.Background(), "task-1", "Water plants", "soil is dry"))

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, "render", got[0].Event)
	assert.Equal(t, "task-1", got[0].TaskID)
	assert.Equal(t, "Water plants", got[0].Title)
	assert.Equal(t, "soil is dry", got[0].Body)
	assert.Equal(t, []string{"complete", "snooze"}, got[0].Actions)
}

func TestRetract(t *testing.T) {
	server, events := newReceiver(t, http.StatusOK)
	surface, err := NewSurface(Config{Enabled: true, URL: server.URL})
	require.NoError(t, err)

	require.NoError(t, surface.Retract(context.Background(), "task-1"))

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, "retract", got[0].Event)
	assert.Equal(t, "task-1", got[0].TaskID)
}

func TestRenderSummary(t *testing.T) {
	server, events := newReceiver(t, http.StatusOK)
	surface, err := NewSurface(Config{Enabled: true, URL: server.URL})
	require.NoError(t, err)

	require.NoError(t, surface.RenderSummary(context.Background(), 3, []string{"First", "Second"}))

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, "summary", got[0].Event)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, []string{"First", "Second"}, got[0].SampleTitles)
}

func TestPost_NonSuccessStatusIsError(t *testing.T) {
	server, _ := newReceiver(t, http.StatusInternalServerError)
	surface, err := NewSurface(Config{Enabled: true, URL: server.URL})
	require.NoError(t, err)

	assert.Error(t, surface.Render(context.Background(), "task-1", "t", ""))
}

func TestDisabledSurfaceSkipsHTTP(t *testing.T) {
	surface, err := NewSurface(Config{Enabled: false, URL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	assert.NoError(t, surface.Render(context.Background(), "task-1", "t", ""))
	assert.NoError(t, surface.Retract(context.Background(), "task-1"))
	assert.NoError(t, surface.RenderSummary(context.Background(), 0, nil))
}

func TestDefaultTimeout(t *testing.T) {
	surface, err := NewSurface(Config{Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, surface.client.Timeout)
}
