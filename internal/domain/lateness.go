package domain

import "time"

// LatenessWindow is the single process-wide record behind late-delivery
// detection. WindowStart resets whenever the gap since the last late fire
// exceeds the window length, so the counter approximates a sliding window
// with O(1) state.
type LatenessWindow struct {
	WindowStart  time.Time
	LateCount    int
	PromptNeeded bool
	LastPromptAt time.Time
}
