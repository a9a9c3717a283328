package memory

// CleanTable is a function or try/catch scope's list of register
// indices holding values that must be disowned when the scope exits
// (spec.md §4.2 "Clean-table"). It is encoded the way the original
// implementation encodes it — a length-prefixed ("Pascal-string") list
// of byte-sized register indices — since the VM's `CLEAN k` instruction
// operand is itself a single byte (opcodes.LayoutA).
type CleanTable struct {
	entries []uint8
}

// Append records register index idx as needing disown on scope exit.
func (c *CleanTable) Append(idx uint8) {
	c.entries = append(c.entries, idx)
}

// Truncate implements `CLEAN k`: every entry past the first k is handed
// to disownIndex, in the order it was added, and the table is truncated
// to its first k entries. A table of k or fewer entries is left as is.
func (c *CleanTable) Truncate(k uint8, disownIndex func(idx uint8)) {
	if int(k) >= len(c.entries) {
		return
	}
	for _, idx := range c.entries[k:] {
		disownIndex(idx)
	}
	c.entries = c.entries[:k]
}

// DrainAll empties the table unconditionally, disowning every entry —
// used on `return` or exception unwind (spec.md §4.2: "On return or
// unwind, the table is fully emptied.").
func (c *CleanTable) DrainAll(disownIndex func(idx uint8)) {
	for _, idx := range c.entries {
		disownIndex(idx)
	}
	c.entries = nil
}

// Len reports the number of live entries.
func (c *CleanTable) Len() int { return len(c.entries) }

// Entries exposes the live register indices, most-recent last.
func (c *CleanTable) Entries() []uint8 { return c.entries }
