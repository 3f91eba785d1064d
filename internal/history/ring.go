package history

// Ring is the primary, in-memory Store: a fixed-capacity circular buffer of
// N owned command slices. It distinguishes empty (head == tail, !full) from
// full (head == tail, full) exactly as spec'd: the set of valid entries is
// [tail, head) modulo N when not full, and all N slots when full.
type Ring struct {
	slots []Entry
	valid []bool
	head  int
	tail  int
	full  bool
}

// NewRing creates an empty ring retaining at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{
		slots: make([]Entry, capacity),
		valid: make([]bool, capacity),
	}
}

// Append stores cmd, evicting the oldest retained entry first if the ring
// is already at capacity.
func (r *Ring) Append(cmd []byte) {
	n := len(r.slots)

	if r.full {
		// Free the slice currently occupying head's slot before overwriting.
		r.slots[r.head] = Entry{}
	}

	r.slots[r.head] = Entry{Data: cmd}
	r.valid[r.head] = true
	r.head = (r.head + 1) % n

	if r.full {
		r.tail = (r.tail + 1) % n
	} else if r.head == r.tail {
		r.full = true
	}
}

// numRetained returns how many slots currently hold a valid entry.
func (r *Ring) numRetained() int {
	n := len(r.slots)
	if r.full {
		return n
	}
	return (r.head - r.tail + n) % n
}

// FindByLogicalOffset walks entries starting at tail, in arrival order.
func (r *Ring) FindByLogicalOffset(p uint64) (Entry, uint64, bool) {
	n := len(r.slots)
	count := r.numRetained()

	var cum uint64
	idx := r.tail
	for i := 0; i < count; i++ {
		e := r.slots[idx]
		sz := uint64(len(e.Data))
		if p < cum+sz {
			return e, p - cum, true
		}
		cum += sz
		idx = (idx + 1) % n
	}
	return Entry{}, 0, false
}

// LogicalOffsetOf sums slot sizes 0..cmdIndex-1 in slot order (not arrival
// order), then adds intraOffset. See Store.LogicalOffsetOf for the rationale.
func (r *Ring) LogicalOffsetOf(cmdIndex int, intraOffset uint64) (uint64, bool) {
	n := len(r.slots)
	if cmdIndex < 0 || cmdIndex >= n {
		return 0, false
	}

	var cum uint64
	for i := 0; i < cmdIndex; i++ {
		if !r.valid[i] {
			return 0, false
		}
		cum += uint64(len(r.slots[i].Data))
	}

	if !r.valid[cmdIndex] {
		return 0, false
	}
	if intraOffset >= uint64(len(r.slots[cmdIndex].Data)) {
		return 0, false
	}

	return cum + intraOffset, true
}

// ForEach visits every retained entry in arrival order.
func (r *Ring) ForEach(fn func(Entry)) {
	n := len(r.slots)
	count := r.numRetained()

	idx := r.tail
	for i := 0; i < count; i++ {
		fn(r.slots[idx])
		idx = (idx + 1) % n
	}
}

// Len returns the total size of all retained entries.
func (r *Ring) Len() uint64 {
	var total uint64
	r.ForEach(func(e Entry) {
		total += uint64(len(e.Data))
	})
	return total
}

// Close is a no-op for the in-memory ring; it holds no external resources.
func (r *Ring) Close() error {
	return nil
}
