package session

import (
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
)

const readChunk = 4096

// Worker owns one client connection end to end: it assembles commands off
// the socket, applies each one to the shared store under mu, and streams
// the readback response for data commands (or the seek tail for a seek
// control) back to the client.
type Worker struct {
	conn  net.Conn
	store history.Store
	mu    *sync.Mutex
	log   *zap.SugaredLogger

	maxRxBuffer int
}

// NewWorker constructs a Worker for one accepted connection. mu must be the
// same mutex the listener and the periodic timestamp writer (if any) use to
// serialize every access to store. maxRxBuffer is forwarded to the
// Assembler; 0 means unbounded growth.
func NewWorker(conn net.Conn, store history.Store, mu *sync.Mutex, log *zap.SugaredLogger, maxRxBuffer int) *Worker {
	return &Worker{
		conn:        conn,
		store:       store,
		mu:          mu,
		log:         log,
		maxRxBuffer: maxRxBuffer,
	}
}

// Run drives the connection until the peer disconnects or a fatal
// per-connection error occurs. It never panics and never propagates an
// error past itself; the returned error is for the caller to log.
func (w *Worker) Run() error {
	asm := NewAssembler(w.maxRxBuffer)
	var fPos uint64

	buf := make([]byte, readChunk)
	for {
		n, err := w.conn.Read(buf)
		if n > 0 {
			if ingestErr := asm.Ingest(buf[:n]); ingestErr != nil {
				return ingestErr
			}

			for {
				cmd, ok := asm.ExtractOne()
				if !ok {
					break
				}

				classified, classifyErr := Classify(cmd)
				if classifyErr != nil {
					w.log.Warnw("dropping malformed command", "error", classifyErr)
					continue
				}

				w.mu.Lock()
				newPos, applyErr := Apply(w.store, classified)
				w.mu.Unlock()
				if applyErr != nil {
					w.log.Warnw("dropping command", "error", applyErr)
					continue
				}
				fPos = newPos

				if streamErr := w.stream(fPos); streamErr != nil {
					return streamErr
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// stream iterates the store from fPos through its end, transmitting each
// retained entry's remaining bytes as one chunk. The mutex is held for the
// full duration, per the spec's coarse-lock design.
func (w *Worker) stream(fPos uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		entry, intra, ok := w.store.FindByLogicalOffset(fPos)
		if !ok {
			return nil
		}

		chunk := entry.Data[intra:]
		if err := w.sendAll(chunk); err != nil {
			return err
		}
		fPos += uint64(len(chunk))
	}
}

// sendAll retries a partial Write until chunk is fully drained or an error
// is observed.
func (w *Worker) sendAll(chunk []byte) error {
	for len(chunk) > 0 {
		n, err := w.conn.Write(chunk)
		if err != nil {
			return err
		}
		chunk = chunk[n:]
	}
	return nil
}

// Close closes the underlying connection. The caller (the supervisor) owns
// reaping the worker's registry entry; Close only releases the socket.
func (w *Worker) Close() error {
	return w.conn.Close()
}
