package history

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// FileRing is the file-backed Store variant: it keeps the same bounded
// ring bookkeeping as Ring (so readback and seek semantics are identical),
// and additionally mirrors every appended command, in arrival order, to a
// backing file on disk. The file is the spec's "persisted state" -- the
// concatenation of every command ever written, not just the retained ones
// -- and is removed on graceful shutdown by Close.
//
// Retained entries still live in memory; FileRing does not re-read the
// backing file to serve FindByLogicalOffset/ForEach. Durability across a
// restart (replaying the file back into the ring) is out of scope.
type FileRing struct {
	*Ring
	path string
	f    *os.File
	log  *zap.SugaredLogger
}

// NewFileRing opens (creating if absent, truncating if present) the backing
// file at path and returns a ring of the given capacity mirrored to it.
// Opening retries briefly on transient errors (e.g. ENOSPC, EMFILE at
// startup); once open, the handle is held for the store's lifetime. A
// backing-file write failure during Append is logged through log rather
// than surfaced to the caller -- Store.Append has no error return, so this
// is the only observation point for a disk-full/EIO on the mirror file.
func NewFileRing(ctx context.Context, path string, capacity int, log *zap.SugaredLogger) (*FileRing, error) {
	f, err := backoff.Retry(ctx, func() (*os.File, error) {
		return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("open backing file %s: %w", path, err)
	}

	return &FileRing{
		Ring: NewRing(capacity),
		path: path,
		f:    f,
		log:  log,
	}, nil
}

// Append mirrors cmd to the backing file before applying the usual
// bounded-ring eviction to the in-memory entries. The in-memory ring
// advances regardless of the mirror write's outcome; a failed mirror write
// is logged, not propagated, since Store.Append has no error return.
func (fr *FileRing) Append(cmd []byte) {
	if _, err := fr.f.Write(cmd); err != nil {
		fr.log.Errorw("write to backing file failed", "path", fr.path, "error", err)
	}

	fr.Ring.Append(cmd)
}

// Close flushes and removes the backing file, matching the shutdown
// sequence's "remove the backing file (file-backed variant)" step.
func (fr *FileRing) Close() error {
	closeErr := fr.f.Close()
	removeErr := os.Remove(fr.path)
	if closeErr != nil {
		return fmt.Errorf("close backing file: %w", closeErr)
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("remove backing file: %w", removeErr)
	}
	return nil
}
