package vm

// A Context is the register state a translation runs against. Translators
// take it by value, so each request sees a single snapshot even if a task
// switch happens concurrently.
type Context struct {
	// RootTable is the physical address of the root table: 256 leaf entries
	// in legacy mode, 256 directory pointers in protected mode.
	RootTable uint32

	// Privileged is set while the processor runs in supervisor mode.
	Privileged bool

	// Generation counts the task switches made before the snapshot was
	// taken. Caches use it to recognize requests from an old address space.
	Generation uint64
}
