package domain

import "time"

// ActionType identifies a user action relayed through the outbox.
type ActionType string

// Action types.
const (
	ActionTaskCompleted ActionType = "taskCompleted"
	ActionTaskSnoozed   ActionType = "taskSnoozed"
)

// OutboxRecord is one side effect produced while the consuming application
// was not running. Records are drained in insertion order as a whole batch;
// the consumer applies them idempotently, keyed by task ID and type.
type OutboxRecord struct {
	Type         ActionType
	TaskID       string
	NewTriggerAt *time.Time // set for snooze actions
	CreatedAt    time.Time
}
