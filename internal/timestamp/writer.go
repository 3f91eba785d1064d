// Package timestamp implements the periodic timestamp writer: in the
// file-backed deployment, every tick formats the local time and appends it
// to the shared history.Store as an ordinary data command.
package timestamp

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
)

const tickInterval = 10 * time.Second

// Writer ticks every 10s and appends a formatted timestamp command to store
// under mu, identically to a session worker's data-command path. It
// competes with connection writers on equal footing for the same mutex --
// no coalescing, no priority.
type Writer struct {
	store history.Store
	mu    *sync.Mutex
	log   *zap.SugaredLogger

	now func() time.Time // overridable for tests
}

// New constructs a Writer appending to store under mu.
func New(store history.Store, mu *sync.Mutex, log *zap.SugaredLogger) *Writer {
	return &Writer{store: store, mu: mu, log: log, now: time.Now}
}

// Run ticks until ctx is canceled. Formatting and appending a tick have no
// failure path, so every tick appends one timestamp and nothing is logged.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Writer) tick() {
	line := formatTimestamp(w.now())

	w.mu.Lock()
	defer w.mu.Unlock()

	w.store.Append([]byte(line))
}

// formatTimestamp renders the local time as "timestamp:%a, %d %b %Y %T %z\n",
// the strftime layout the spec names verbatim.
func formatTimestamp(t time.Time) string {
	return "timestamp:" + t.Format("Mon, 02 Jan 2006 15:04:05 -0700") + "\n"
}
