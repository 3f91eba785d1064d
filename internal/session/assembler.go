// Package session implements the per-connection pieces of the protocol:
// assembling newline-delimited commands out of a raw byte stream,
// classifying each complete command, and driving one client connection's
// worker loop against a shared history.Store.
package session

const growChunk = 1024

// Assembler is a per-connection growable byte accumulator that extracts
// complete newline-terminated commands from an arbitrary stream of Ingest
// calls. Bytes that arrive before a command's terminating '\n' persist
// across calls.
type Assembler struct {
	rx     []byte
	total  int
	maxCap int // 0 means unbounded growth
}

// NewAssembler returns an empty Assembler. maxCap, if non-zero, bounds how
// large rx may grow; Ingest returns an error when the pending bytes plus the
// incoming chunk would need rx to grow past it. The check is on the chunk
// as a whole: newlines inside the chunk do not exempt it (see spec.md
// section 9's note on the unbounded-growth hazard).
func NewAssembler(maxCap int) *Assembler {
	return &Assembler{
		rx:     make([]byte, growChunk),
		maxCap: maxCap,
	}
}

// Ingest appends buf to the pending bytes, growing rx by fixed 1024-byte
// increments as needed.
func (a *Assembler) Ingest(buf []byte) error {
	need := a.total + len(buf)
	for need > len(a.rx) {
		grown := len(a.rx) + growChunk
		if a.maxCap > 0 && grown > a.maxCap {
			return errRxBufferCapExceeded
		}
		next := make([]byte, grown)
		copy(next, a.rx[:a.total])
		a.rx = next
	}
	copy(a.rx[a.total:need], buf)
	a.total = need
	return nil
}

// ExtractOne scans the pending bytes for the first '\n'. If found, it
// returns the complete command (inclusive of the newline) and shifts any
// remaining bytes down to the start of rx. It returns ok=false when no
// complete command is currently buffered.
func (a *Assembler) ExtractOne() (cmd []byte, ok bool) {
	k := -1
	for i := 0; i < a.total; i++ {
		if a.rx[i] == '\n' {
			k = i
			break
		}
	}
	if k < 0 {
		return nil, false
	}

	out := make([]byte, k+1)
	copy(out, a.rx[:k+1])

	remaining := a.total - (k + 1)
	copy(a.rx, a.rx[k+1:a.total])
	a.total = remaining

	return out, true
}
