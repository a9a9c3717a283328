package eelapi

import (
	"fmt"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/eel-lang/eel/values"
)

// Stats is a diagnostics snapshot of a VM's resource occupancy: heap
// size, string-pool occupancy, and deadlist length (spec.md §6 domain
// stack note). Byte counts render through go-humanize the same way the
// teacher's CLI reports file/memory sizes to a human reader rather than
// a raw integer.
type Stats struct {
	HeapUsed     int
	HeapCap      int
	StringsLive  int
	StringsCache int
	DeadlistLen  int
}

// Stats computes a fresh snapshot of v's current occupancy.
func (v *VM) Stats() Stats {
	return Stats{
		HeapUsed:     v.Machine.Heap.Len(),
		HeapCap:      v.Machine.Heap.Cap(),
		StringsLive:  v.StringPool.LiveCount(),
		StringsCache: v.StringPool.CacheLen(),
		DeadlistLen:  len(v.Machine.Manager.Deadlist),
	}
}

// String renders the snapshot the way cmd/eel's `stats` subcommand
// prints it: byte counts are register-slot counts scaled by the size of
// a values.Value, humanized for readability.
func (s Stats) String() string {
	valueSize := uint64(unsafe.Sizeof(values.Value{}))
	return fmt.Sprintf(
		"heap: %s used / %s cap\nstrings: %d live, %d cached\ndeadlist: %d",
		humanize.Bytes(uint64(s.HeapUsed)*valueSize),
		humanize.Bytes(uint64(s.HeapCap)*valueSize),
		s.StringsLive, s.StringsCache, s.DeadlistLen,
	)
}
