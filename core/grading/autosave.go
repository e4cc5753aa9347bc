package grading

import (
	"sync"
	"time"
)

// DefaultAutosaveDelay is the debounce window for coalescing saves.
const DefaultAutosaveDelay = 700 * time.Millisecond

// Autosave coalesces rapid mutations into one trailing-edge save per id.
// Scheduling again before the window expires restarts the timer, so only the
// in-memory state present when the timer finally fires is ever persisted.
// Timers for different ids run independently.
type Autosave struct {
	delay  time.Duration
	save   func(id string) error
	report func(id string, err error)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewAutosave(delay time.Duration, save func(id string) error, report func(id string, err error)) *Autosave {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosave{
		delay:  delay,
		save:   save,
		report: report,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule (re)starts the debounce timer for id.
func (as *Autosave) Schedule(id string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if t, ok := as.timers[id]; ok {
		t.Stop()
	}
	as.timers[id] = time.AfterFunc(as.delay, func() {
		as.mu.Lock()
		delete(as.timers, id)
		as.mu.Unlock()
		if err := as.save(id); err != nil && as.report != nil {
			as.report(id, err)
		}
	})
}

// Flush persists id immediately, bypassing any pending timer.
func (as *Autosave) Flush(id string) error {
	as.Cancel(id)
	return as.save(id)
}

// Cancel drops any pending save for id without persisting.
func (as *Autosave) Cancel(id string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if t, ok := as.timers[id]; ok {
		t.Stop()
		delete(as.timers, id)
	}
}

// Stop cancels every pending save; called at session teardown.
func (as *Autosave) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()
	for id, t := range as.timers {
		t.Stop()
		delete(as.timers, id)
	}
}
