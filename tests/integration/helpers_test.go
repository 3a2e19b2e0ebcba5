//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trudido/remindd/internal/testutil"
)

var taskSeq atomic.Int64

// newTaskID returns a task ID unique within the test run.
func newTaskID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, taskSeq.Add(1))
}

type reminderData struct {
	TaskID        string `json:"task_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	Tier          string `json:"tier"`
	TriggerTimeMs int64  `json:"trigger_time_ms"`
}

// scheduleReminder schedules a reminder and returns the selected tier.
func scheduleReminder(t *testing.T, taskID, title string, triggerAt time.Time) string {
	t.Helper()

	resp, err := testClient.POST("/v1/reminders", map[string]interface{}{
		"task_id":         taskID,
		"title":           title,
		"trigger_time_ms": triggerAt.UnixMilli(),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data reminderData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	t.Cleanup(func() {
		resp, err := testClient.DELETE("/v1/reminders/" + taskID)
		if err == nil {
			_ = resp.Body.Close()
		}
	})
	return result.Data.Tier
}

// listReminders returns all persisted reminders keyed by task ID.
func listReminders(t *testing.T) map[string]reminderData {
	t.Helper()

	resp, err := testClient.GET("/v1/reminders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []reminderData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	out := make(map[string]reminderData, len(result.Data))
	for _, item := range result.Data {
		out[item.TaskID] = item
	}
	return out
}

// seedItem inserts a persisted item directly, bypassing the scheduler. Used
// to stage pre-restart state for recovery tests.
func seedItem(t *testing.T, taskID string, triggerAt time.Time) {
	t.Helper()
	_, err := testDB.Exec(context.Background(),
		`INSERT INTO scheduled_items (task_id, title, trigger_at) VALUES ($1, $2, $3)`,
		taskID, "seeded", triggerAt,
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testDB.Exec(context.Background(),
			`DELETE FROM scheduled_items WHERE task_id = $1`, taskID)
	})
}
