package apibind

import (
	"sync"
	"sync/atomic"
)

// Sequencer tags list requests for one screen with a monotonic sequence so
// that a slow earlier response cannot overwrite the result of a later one.
// Begin before issuing a request; Accept with the same tag before applying
// the response, and discard it when Accept reports false.
type Sequencer struct {
	latest atomic.Uint64
}

// Begin issues the next sequence tag.
func (s *Sequencer) Begin() uint64 {
	return s.latest.Add(1)
}

// Accept reports whether seq still belongs to the most recently issued
// request.
func (s *Sequencer) Accept(seq uint64) bool {
	return s.latest.Load() == seq
}

// maxScreens caps how many screen keys a Guard tracks. Past the cap the
// whole map is reset: dropping a sequencer only means the next request for
// that screen starts a fresh ordering domain, so an in-flight response may
// be accepted once where it would have been discarded. That is the same
// behavior as a process restart and is harmless.
const maxScreens = 4096

// Guard keys sequencers by screen so each active screen gets its own
// ordering domain. The zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	seqs map[string]*Sequencer
}

// Begin issues a tag for the given screen key.
func (g *Guard) Begin(key string) uint64 {
	return g.seq(key).Begin()
}

// Accept reports whether seq is still current for the given screen key.
func (g *Guard) Accept(key string, seq uint64) bool {
	return g.seq(key).Accept(seq)
}

func (g *Guard) seq(key string) *Sequencer {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seqs == nil || len(g.seqs) >= maxScreens {
		g.seqs = map[string]*Sequencer{}
	}
	s, ok := g.seqs[key]
	if !ok {
		s = &Sequencer{}
		g.seqs[key] = s
	}
	return s
}
