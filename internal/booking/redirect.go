package booking

import (
	"sync"
	"time"

	"github.com/wolfman30/clinic-portal/internal/access"
)

// DefaultRedirectDelay is how long the success screen stays up before the
// patient is sent back to the dashboard.
const DefaultRedirectDelay = 3 * time.Second

// RedirectPath is where a finished booking navigates to.
const RedirectPath = access.PatientDashboardPath

// Redirects tracks pending post-submission transitions, one per session. A
// pending transition is cancelled when its view unmounts.
type Redirects struct {
	mu      sync.Mutex
	pending map[string]*redirect
}

type redirect struct {
	timer *time.Timer
}

// NewRedirects creates an empty scheduler.
func NewRedirects() *Redirects {
	return &Redirects{pending: make(map[string]*redirect)}
}

// Schedule runs fire after delay unless cancelled first. A second Schedule for
// the same key replaces the first.
func (r *Redirects) Schedule(key string, delay time.Duration, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.pending[key]; ok {
		prev.timer.Stop()
	}
	entry := &redirect{}
	entry.timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		current, ok := r.pending[key]
		if !ok || current != entry {
			r.mu.Unlock()
			return
		}
		delete(r.pending, key)
		r.mu.Unlock()
		fire()
	})
	r.pending[key] = entry
}

// Cancel stops the pending transition for key. It reports whether one was pending.
func (r *Redirects) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(r.pending, key)
	return true
}

// Pending reports whether a transition is scheduled for key.
func (r *Redirects) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// Stop cancels every pending transition.
func (r *Redirects) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, entry := range r.pending {
		entry.timer.Stop()
		delete(r.pending, key)
	}
}
