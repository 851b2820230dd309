package booking

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRedirectFires(t *testing.T) {
	r := NewRedirects()
	fired := make(chan struct{})
	r.Schedule("s1", 5*time.Millisecond, func() { close(fired) })

	if !r.Pending("s1") {
		t.Fatal("expected pending redirect")
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("redirect did not fire")
	}
	waitFor(t, func() bool { return !r.Pending("s1") })
}

func TestRedirectCancelPreventsFire(t *testing.T) {
	r := NewRedirects()
	var fired atomic.Bool
	r.Schedule("s1", 20*time.Millisecond, func() { fired.Store(true) })

	if !r.Cancel("s1") {
		t.Fatal("expected cancel to find pending redirect")
	}
	if r.Cancel("s1") {
		t.Fatal("second cancel should report nothing pending")
	}
	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Fatal("cancelled redirect fired")
	}
}

func TestRedirectRescheduleReplaces(t *testing.T) {
	r := NewRedirects()
	var first, second atomic.Int32
	r.Schedule("s1", 20*time.Millisecond, func() { first.Add(1) })
	r.Schedule("s1", 5*time.Millisecond, func() { second.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatal("replaced redirect fired")
	}
	if second.Load() != 1 {
		t.Fatalf("replacement fired %d times, want 1", second.Load())
	}
}

func TestRedirectStopCancelsAll(t *testing.T) {
	r := NewRedirects()
	var fired atomic.Int32
	r.Schedule("a", 20*time.Millisecond, func() { fired.Add(1) })
	r.Schedule("b", 20*time.Millisecond, func() { fired.Add(1) })
	r.Stop()

	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("%d redirects fired after Stop", fired.Load())
	}
	if r.Pending("a") || r.Pending("b") {
		t.Fatal("expected no pending redirects")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met")
}
