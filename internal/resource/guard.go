package resource

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Token identifies one in-flight request within a guard's stream.
type Token struct {
	id  uuid.UUID
	gen uint64
}

// ID returns the token's opaque identifier, useful in logs.
func (t Token) ID() string { return t.id.String() }

// Guard serializes a stream of overlapping requests: beginning a new request
// invalidates the previous token and cancels its context, so the most
// recently issued request always wins regardless of response arrival order.
type Guard struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin supersedes any in-flight request and returns the context and token
// for a new one.
func (g *Guard) Begin(parent context.Context) (context.Context, Token) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	g.gen++
	return ctx, Token{id: uuid.New(), gen: g.gen}
}

// IsCurrent reports whether t is the most recently issued token.
func (g *Guard) IsCurrent(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.gen == g.gen
}
