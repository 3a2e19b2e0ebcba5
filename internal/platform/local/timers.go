// Package local implements the platform timer service on in-process timers.
//
// Registrations do not survive the process; durability across restarts comes
// from the recovery reconciler replaying the persistent item store, which is
// the same division of labor the engine assumes of any host timer service.
package local

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trudido/remindd/internal/platform"
)

// Timers implements platform.TimerService using time.AfterFunc.
type Timers struct {
	mu        sync.Mutex
	exactWake bool
	timers    map[platform.Handle]*time.Timer
	byName    map[string]platform.Handle
	nameOf    map[platform.Handle]string
	closed    bool
}

// New creates a timer service. exactWake is the initial capability state.
func New(exactWake bool) *Timers {
	return &Timers{
		exactWake: exactWake,
		timers:    make(map[platform.Handle]*time.Timer),
		byName:    make(map[string]platform.Handle),
		nameOf:    make(map[platform.Handle]string),
	}
}

// ArmOneShot arms a timer for the given instant. Inexact registrations land
// at a uniformly random point inside [at, at+window], mirroring the slack a
// power-saving host would introduce.
func (t *Timers) ArmOneShot(at time.Time, exact bool, window time.Duration, fire platform.FireFunc) (platform.Handle, error) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	if !exact && window > 0 {
		delay += time.Duration(rand.Int63n(int64(window)))
	}
	return t.arm("", delay, fire)
}

// ArmCheckpoint arms a named re-evaluation wake-up. An existing checkpoint
// under the same name is replaced.
func (t *Timers) ArmCheckpoint(name string, delay time.Duration, fire platform.FireFunc) (platform.Handle, error) {
	return t.arm(name, delay, fire)
}

func (t *Timers) arm(name string, delay time.Duration, fire platform.FireFunc) (platform.Handle, error) {
	handle := platform.Handle(uuid.New().String())

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrClosed
	}
	if name != "" {
		if prev, ok := t.byName[name]; ok {
			t.cancelLocked(prev)
		}
		t.byName[name] = handle
		t.nameOf[handle] = name
	}
	t.timers[handle] = time.AfterFunc(delay, func() {
		if !t.take(handle) {
			return // cancelled after the timer elapsed
		}
		fire(context.Background())
	})
	return handle, nil
}

// take claims a fired handle, reporting false if it was cancelled.
func (t *Timers) take(handle platform.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.timers[handle]; !ok {
		return false
	}
	t.forgetLocked(handle)
	return true
}

// Cancel discards a pending registration. Unknown handles are a no-op.
func (t *Timers) Cancel(handle platform.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(handle)
}

func (t *Timers) cancelLocked(handle platform.Handle) {
	timer, ok := t.timers[handle]
	if !ok {
		return
	}
	timer.Stop()
	t.forgetLocked(handle)
}

func (t *Timers) forgetLocked(handle platform.Handle) {
	delete(t.timers, handle)
	if name, ok := t.nameOf[handle]; ok {
		delete(t.nameOf, handle)
		if t.byName[name] == handle {
			delete(t.byName, name)
		}
	}
}

// Capabilities returns the current capability state.
func (t *Timers) Capabilities() platform.CapabilitySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return platform.CapabilitySnapshot{ExactWake: t.exactWake}
}

// SetExactWake flips the exact-wake grant. Pending registrations keep the
// tier they were armed with; only future decisions see the change.
func (t *Timers) SetExactWake(granted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.exactWake != granted {
		slog.Info("exact wake capability changed", "granted", granted)
	}
	t.exactWake = granted
}

// Pending returns the number of armed registrations.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

// Close stops all pending timers. Further arms fail with ErrClosed.
func (t *Timers) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for _, timer := range t.timers {
		timer.Stop()
	}
	t.timers = make(map[platform.Handle]*time.Timer)
	t.byName = make(map[string]platform.Handle)
	t.nameOf = make(map[platform.Handle]string)
}
