package server

import (
	"container/list"
	"sync"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/session"
)

// entry is one session registry descriptor: the spec's "thread handle,
// pointer to the client socket, connected flag, complete flag, and the
// client's address" realized as a goroutine, a *session.Worker, and a
// done channel closed when that goroutine returns.
type entry struct {
	worker *session.Worker
	addr   string
	done   chan struct{}
}

// registry is the session registry: a (doubly) linked list of worker
// descriptors, mutated only by the listener goroutine. container/list
// gives us O(1) removal by element handle, which is what the spec's
// "walk the registry, join-and-remove any worker whose complete flag is
// set" reap step needs.
type registry struct {
	mu sync.Mutex
	l  *list.List
}

func newRegistry() *registry {
	return &registry{l: list.New()}
}

func (r *registry) add(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.l.PushBack(e)
}

// reapCompleted removes and returns every entry whose worker goroutine has
// already finished (its done channel is closed), without blocking on any
// still-running worker.
func (r *registry) reapCompleted() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var done []*entry
	for el := r.l.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		select {
		case <-e.done:
			done = append(done, e)
			r.l.Remove(el)
		default:
		}
		el = next
	}
	return done
}

// drainAll returns every remaining entry and empties the registry. The
// caller is responsible for waiting on each entry's done channel.
func (r *registry) drainAll() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entry, 0, r.l.Len())
	for el := r.l.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry))
	}
	r.l.Init()
	return out
}
