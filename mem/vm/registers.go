package vm

import "sync"

// A Flusher drops every cached translation. TLBs implement it. After
// FlushBefore(g), requests whose context generation is below g must not
// fill the cache.
type Flusher interface {
	FlushBefore(generation uint64)
}

// Registers holds the root-table pointer and the privilege flag on behalf of
// the task-switch logic. Translators only ever see Snapshot results.
type Registers struct {
	sync.Mutex
	rootTable  uint32
	privileged bool
	generation uint64
	flushers   []Flusher
}

// NewRegisters creates a register file pointing at rootTable.
func NewRegisters(rootTable uint32, privileged bool) *Registers {
	return &Registers{
		rootTable:  rootTable,
		privileged: privileged,
	}
}

// AttachFlusher registers a cache that must be flushed whenever the root
// table changes.
func (r *Registers) AttachFlusher(f Flusher) {
	r.Lock()
	defer r.Unlock()

	r.flushers = append(r.flushers, f)
}

// Snapshot returns the current register values.
func (r *Registers) Snapshot() Context {
	r.Lock()
	defer r.Unlock()

	return Context{
		RootTable:  r.rootTable,
		Privileged: r.privileged,
		Generation: r.generation,
	}
}

// SwitchTask installs a new root table, starts a new generation and flushes
// all attached caches before the lock is released.
func (r *Registers) SwitchTask(rootTable uint32) {
	r.Lock()
	defer r.Unlock()

	r.rootTable = rootTable
	r.generation++
	for _, f := range r.flushers {
		f.FlushBefore(r.generation)
	}
}

// SetPrivileged changes the execution mode.
func (r *Registers) SetPrivileged(privileged bool) {
	r.Lock()
	defer r.Unlock()

	r.privileged = privileged
}
