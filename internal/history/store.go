// Package history implements the bounded command history described by the
// wire protocol: a fixed-capacity ring of retained commands, addressable
// both by logical byte offset (arrival order) and by underlying slot index
// (the convention the seek control command uses).
package history

// Entry is one retained command: an owned, immutable byte slice including
// its trailing newline. Entries are never mutated in place; eviction frees
// the slot's old Entry before a new one is written into it.
type Entry struct {
	Data []byte
}

// Store is the contract shared by every history backend. All of its
// operations are total over valid inputs and never fail on their own --
// callers serialize every call (mutating or reading) behind one shared
// mutex, so Store implementations do no locking of their own.
type Store interface {
	// Append takes ownership of cmd and retains it, evicting the oldest
	// entry first if the store is already at capacity.
	Append(cmd []byte)

	// FindByLogicalOffset walks the retained entries in arrival order
	// (oldest first) and locates the entry that contains logical offset p
	// in the arrival-order concatenation of all retained entries. ok is
	// false when p is out of range or the store holds nothing.
	FindByLogicalOffset(p uint64) (entry Entry, intraOffset uint64, ok bool)

	// LogicalOffsetOf maps (cmdIndex, intraOffset) to a logical offset,
	// where cmdIndex addresses the underlying fixed-size slot array
	// directly (slot 0..N-1 in slot order), NOT arrival order. This is
	// the indexing convention the seek control command observes; once the
	// ring has wrapped, slot 0 is no longer the oldest retained entry.
	LogicalOffsetOf(cmdIndex int, intraOffset uint64) (offset uint64, ok bool)

	// ForEach visits every retained entry in arrival order.
	ForEach(fn func(Entry))

	// Len returns the total size, in bytes, of the arrival-order
	// concatenation of all retained entries.
	Len() uint64

	// Close releases any resources held by the store (backing files,
	// etc). It does not clear retained entries.
	Close() error
}
