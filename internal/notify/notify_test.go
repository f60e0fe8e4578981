package notify

import (
	"testing"
	"time"
)

func waitCleared(n *Notifier, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if _, ok := n.Current(); !ok {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestNotifyAutoClears(t *testing.T) {
	n := New(30 * time.Millisecond)
	n.Notify(Success, "Invoice saved successfully!")
	msg, ok := n.Current()
	if !ok || msg.Text != "Invoice saved successfully!" || msg.Kind != Success {
		t.Fatalf("unexpected message %+v %v", msg, ok)
	}
	if !waitCleared(n, time.Second) {
		t.Fatalf("message was not cleared")
	}
}

func TestNotifyReschedules(t *testing.T) {
	n := New(80 * time.Millisecond)
	n.Notify(Success, "first")
	time.Sleep(50 * time.Millisecond)
	n.Notify(Success, "second")

	// the first timer would have fired by now
	time.Sleep(50 * time.Millisecond)
	msg, ok := n.Current()
	if !ok || msg.Text != "second" {
		t.Fatalf("second message cleared by stale timer: %+v %v", msg, ok)
	}
	if !waitCleared(n, time.Second) {
		t.Fatalf("second message was not cleared")
	}
}

func TestStaleExpireIgnored(t *testing.T) {
	n := New(time.Hour)
	n.Notify(Error, "old")
	stale := n.gen
	n.Notify(Success, "new")
	n.expire(stale)
	if msg, ok := n.Current(); !ok || msg.Text != "new" {
		t.Fatalf("stale expiry cleared newer message: %+v %v", msg, ok)
	}
	n.Stop()
}

func TestClear(t *testing.T) {
	n := New(time.Hour)
	n.Notify(Success, "x")
	n.Clear()
	if _, ok := n.Current(); ok {
		t.Fatalf("expected no message after Clear")
	}
	if New(0).delay != DefaultDelay {
		t.Fatalf("expected default delay")
	}
}
