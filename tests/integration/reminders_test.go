//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trudido/remindd/internal/testutil"
)

func TestScheduleReminder_NearTermIsExact(t *testing.T) {
	taskID := newTaskID("near")
	tier := scheduleReminder(t, taskID, "Water plants", time.Now().Add(time.Hour))
	assert.Equal(t, "exact", tier)

	items := listReminders(t)
	require.Contains(t, items, taskID)
	assert.Equal(t, "Water plants", items[taskID].Title)
}

func TestScheduleReminder_FarFutureIsDeferred(t *testing.T) {
	taskID := newTaskID("far")
	tier := scheduleReminder(t, taskID, "Renew passport", time.Now().Add(72*time.Hour))
	assert.Equal(t, "deferred_checkpoint", tier)
}

func TestScheduleReminder_ReplacesExisting(t *testing.T) {
	taskID := newTaskID("replace")
	first := time.Now().Add(time.Hour)
	second := time.Now().Add(2 * time.Hour)

	scheduleReminder(t, taskID, "First", first)
	scheduleReminder(t, taskID, "Second", second)

	items := listReminders(t)
	require.Contains(t, items, taskID)
	assert.Equal(t, "Second", items[taskID].Title)
	assert.Equal(t, second.UnixMilli(), items[taskID].TriggerTimeMs)
}

func TestScheduleReminder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing task_id", map[string]interface{}{"trigger_time_ms": time.Now().Add(time.Hour).UnixMilli()}},
		{"missing trigger time", map[string]interface{}{"task_id": "task-1"}},
		{"non-positive trigger time", map[string]interface{}{"task_id": "task-1", "trigger_time_ms": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := testClient.POST("/v1/reminders", tt.payload)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCancelReminder(t *testing.T) {
	taskID := newTaskID("cancel")
	scheduleReminder(t, taskID, "Water plants", time.Now().Add(time.Hour))

	resp, err := testClient.DELETE("/v1/reminders/" + taskID)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.NotContains(t, listReminders(t), taskID)
}

func TestCancelReminder_UnknownTaskSucceeds(t *testing.T) {
	resp, err := testClient.DELETE("/v1/reminders/" + newTaskID("ghost"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthAndVersion(t *testing.T) {
	resp, err := testClient.GET("/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", testutil.ReadBody(t, resp))

	resp, err = testClient.GET("/version")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var version struct {
		Version string `json:"version"`
	}
	testutil.DecodeJSON(t, resp, &version)
	assert.NotEmpty(t, version.Version)
}
