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

type actionData struct {
	Type          string `json:"type"`
	TaskID        string `json:"task_id"`
	TriggerTimeMs *int64 `json:"trigger_time_ms"`
	CreatedAtMs   int64  `json:"created_at_ms"`
}

func drainOutbox(t *testing.T) []actionData {
	t.Helper()
	resp, err := testClient.POST("/v1/outbox/drain", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []actionData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func completeReminder(t *testing.T, taskID string) bool {
	t.Helper()
	resp, err := testClient.POST("/v1/reminders/"+taskID+"/complete", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Completed bool `json:"completed"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.Completed
}

func TestCompleteReminder(t *testing.T) {
	drainOutbox(t) // discard leftovers from earlier tests

	taskID := newTaskID("complete")
	scheduleReminder(t, taskID, "Water plants", time.Now().Add(time.Hour))

	assert.True(t, completeReminder(t, taskID))

	records := drainOutbox(t)
	require.Len(t, records, 1)
	assert.Equal(t, "taskCompleted", records[0].Type)
	assert.Equal(t, taskID, records[0].TaskID)
	assert.Nil(t, records[0].TriggerTimeMs)
}

func TestCompleteReminder_DuplicateAbsorbed(t *testing.T) {
	drainOutbox(t)

	taskID := newTaskID("double-tap")
	assert.True(t, completeReminder(t, taskID))
	assert.False(t, completeReminder(t, taskID), "second tap reports already completed")

	records := drainOutbox(t)
	assert.Len(t, records, 1, "duplicate completion must not queue a second record")
}

func TestSnoozeReminder(t *testing.T) {
	drainOutbox(t)

	taskID := newTaskID("snooze")
	scheduleReminder(t, taskID, "Water plants", time.Now().Add(time.Minute))

	before := time.Now()
	resp, err := testClient.POST("/v1/reminders/"+taskID+"/snooze", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			TriggerTimeMs int64 `json:"trigger_time_ms"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	newAt := time.UnixMilli(result.Data.TriggerTimeMs)
	assert.WithinDuration(t, before.Add(10*time.Minute), newAt, 10*time.Second)

	// The reminder is re-armed with the snooze payload.
	items := listReminders(t)
	require.Contains(t, items, taskID)
	assert.Equal(t, "Task Reminder", items[taskID].Title)
	assert.Equal(t, newAt.UnixMilli(), items[taskID].TriggerTimeMs)

	records := drainOutbox(t)
	require.Len(t, records, 1)
	assert.Equal(t, "taskSnoozed", records[0].Type)
	require.NotNil(t, records[0].TriggerTimeMs)
	assert.Equal(t, newAt.UnixMilli(), *records[0].TriggerTimeMs)
}

func TestDrainOutbox_OrderAndClear(t *testing.T) {
	drainOutbox(t)

	first := newTaskID("order")
	second := newTaskID("order")
	require.True(t, completeReminder(t, first))
	require.True(t, completeReminder(t, second))

	records := drainOutbox(t)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0].TaskID)
	assert.Equal(t, second, records[1].TaskID)

	assert.Empty(t, drainOutbox(t), "a drained queue stays empty")
}
