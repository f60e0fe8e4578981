// Package notify holds the single transient message shown to the user
// after an action, cleared automatically after a short delay.
package notify

import (
	"sync"
	"time"
)

// DefaultDelay is how long a message stays visible.
const DefaultDelay = 3 * time.Second

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

type Message struct {
	Kind Kind
	Text string
}

// Notifier keeps at most one pending message. Every Notify cancels the
// previous auto-clear timer and starts a new one; a generation counter
// guards against a timer that already fired clearing a newer message.
type Notifier struct {
	mu    sync.Mutex
	delay time.Duration
	cur   *Message
	timer *time.Timer
	gen   uint64
}

// New returns a Notifier clearing messages after delay. A non-positive
// delay selects DefaultDelay.
func New(delay time.Duration) *Notifier {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Notifier{delay: delay}
}

// Notify replaces the pending message and reschedules the auto-clear.
func (n *Notifier) Notify(kind Kind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.cur = &Message{Kind: kind, Text: text}
	n.timer = time.AfterFunc(n.delay, func() { n.expire(gen) })
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return
	}
	n.cur = nil
	n.timer = nil
}

// Current returns the pending message, if any.
func (n *Notifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cur == nil {
		return Message{}, false
	}
	return *n.cur, true
}

// Clear drops the pending message and its timer.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.cur = nil
}

// Stop cancels any pending timer; the current message is kept.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
