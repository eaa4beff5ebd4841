package resource

import (
	"sync"
	"time"
)

// MessageKind classifies a transient message.
type MessageKind int

const (
	KindSuccess MessageKind = iota
	KindError
)

// Message is one short-lived status message.
type Message struct {
	Text string
	Kind MessageKind
}

// Notifier holds at most one live message per view. A new Show replaces the
// current message; each message auto-clears after its duration unless
// replaced sooner.
type Notifier struct {
	mu  sync.Mutex
	ttl time.Duration
	gen uint64
	cur *Message
}

// NewNotifier builds a notifier with the given default display duration.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Notifier{ttl: ttl}
}

// Show replaces the current message.
func (n *Notifier) Show(text string, kind MessageKind) {
	n.ShowFor(text, kind, n.ttl)
}

// Success shows a success message.
func (n *Notifier) Success(text string) { n.Show(text, KindSuccess) }

// Error shows an error message.
func (n *Notifier) Error(text string) { n.Show(text, KindError) }

// ShowFor replaces the current message with one expiring after d.
func (n *Notifier) ShowFor(text string, kind MessageKind, d time.Duration) {
	if d <= 0 {
		d = n.ttl
	}
	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.cur = &Message{Text: text, Kind: kind}
	n.mu.Unlock()

	time.AfterFunc(d, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// A newer message owns the slot now; leave it alone.
		if n.gen == gen {
			n.cur = nil
		}
	})
}

// Current returns the live message, if any.
func (n *Notifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cur == nil {
		return Message{}, false
	}
	return *n.cur, true
}

// Clear removes the live message immediately.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	n.cur = nil
}
