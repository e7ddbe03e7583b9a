// Package tlb provides a direct-mapped translation lookaside buffer.
package tlb

import (
	"fmt"
	"sync"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// NumSlots is the number of entries in a TLB. Each TLB index selects exactly
// one slot.
const NumSlots = 256

// InsertOutcome is the advisory result of an insertion. The slot is always
// overwritten regardless of the outcome.
type InsertOutcome int

// Insert outcomes.
const (
	InsertNew InsertOutcome = iota
	InsertDuplicate
)

func (o InsertOutcome) String() string {
	switch o {
	case InsertNew:
		return "new"
	case InsertDuplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Hook positions of a TLB.
var (
	HookPosHit    = &hooking.HookPos{Name: "TLBHit"}
	HookPosMiss   = &hooking.HookPos{Name: "TLBMiss"}
	HookPosInsert = &hooking.HookPos{Name: "TLBInsert"}
	HookPosFlush  = &hooking.HookPos{Name: "TLBFlush"}
)

// An Access describes a probe or an insertion. It is the Item of the hook
// context for every position except HookPosFlush.
type Access struct {
	Index   uint8
	Tag     uint16
	Entry   vm.LeafEntry
	Outcome InsertOutcome
}

// Slot is a copy of a valid TLB slot.
type Slot struct {
	Index uint8        `json:"index"`
	Tag   uint16       `json:"tag"`
	Entry vm.LeafEntry `json:"entry"`
}

type slot struct {
	valid bool
	tag   uint16
	entry vm.LeafEntry
}

// A Session is exclusive access to a TLB. No other search, insertion or
// flush can happen while a session is open.
type Session interface {
	Search(index uint8, tag uint16) (entry vm.LeafEntry, found bool)
	Insert(index uint8, tag uint16, entry vm.LeafEntry) InsertOutcome

	// Stale reports whether a request of the given context generation was
	// issued before the latest FlushBefore.
	Stale(generation uint64) bool
}

// TLB caches leaf entries by (index, tag). It is safe for concurrent use.
// Hooks are invoked while the TLB is locked and must not call back into it.
type TLB struct {
	hooking.HookableBase

	name       string
	lock       sync.Mutex
	generation uint64
	slots      [NumSlots]slot
}

// Name returns the name of the TLB.
func (t *TLB) Name() string {
	return t.name
}

// Flush invalidates every slot.
func (t *TLB) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.flush()
}

// FlushBefore invalidates every slot and marks requests whose context
// generation is below generation as stale. The generation never goes back.
func (t *TLB) FlushBefore(generation uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if generation > t.generation {
		t.generation = generation
	}

	t.flush()
}

// Generation returns the generation of the latest FlushBefore.
func (t *TLB) Generation() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.generation
}

func (t *TLB) flush() {
	for i := range t.slots {
		t.slots[i].valid = false
	}

	t.invoke(HookPosFlush, nil)
}

// Search returns the entry cached at index if its tag matches.
func (t *TLB) Search(index uint8, tag uint16) (vm.LeafEntry, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.search(index, tag)
}

// Insert stores entry at index under tag, replacing the current occupant.
func (t *TLB) Insert(index uint8, tag uint16, entry vm.LeafEntry) InsertOutcome {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.insert(index, tag, entry)
}

// Atomic runs fn with a session on the TLB. Searches and insertions made
// through the session form one atomic unit.
func (t *TLB) Atomic(fn func(s Session)) {
	t.lock.Lock()
	defer t.lock.Unlock()

	fn(session{t})
}

// Slots returns the valid slots in index order.
func (t *TLB) Slots() []Slot {
	t.lock.Lock()
	defer t.lock.Unlock()

	slots := make([]Slot, 0)
	for i, s := range t.slots {
		if !s.valid {
			continue
		}

		slots = append(slots, Slot{Index: uint8(i), Tag: s.tag, Entry: s.entry})
	}

	return slots
}

func (t *TLB) search(index uint8, tag uint16) (vm.LeafEntry, bool) {
	s := t.slots[index]
	if !s.valid || s.tag != tag {
		t.invoke(HookPosMiss, Access{Index: index, Tag: tag})
		return 0, false
	}

	t.invoke(HookPosHit, Access{Index: index, Tag: tag, Entry: s.entry})

	return s.entry, true
}

func (t *TLB) insert(index uint8, tag uint16, entry vm.LeafEntry) InsertOutcome {
	s := &t.slots[index]

	outcome := InsertNew
	if s.valid && s.tag == tag {
		outcome = InsertDuplicate
	}

	s.valid = true
	s.tag = tag
	s.entry = entry

	t.invoke(HookPosInsert, Access{
		Index:   index,
		Tag:     tag,
		Entry:   entry,
		Outcome: outcome,
	})

	return outcome
}

func (t *TLB) invoke(pos *hooking.HookPos, item interface{}) {
	if t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    pos,
		Item:   item,
	})
}

type session struct {
	t *TLB
}

func (s session) Search(index uint8, tag uint16) (vm.LeafEntry, bool) {
	return s.t.search(index, tag)
}

func (s session) Insert(
	index uint8,
	tag uint16,
	entry vm.LeafEntry,
) InsertOutcome {
	return s.t.insert(index, tag, entry)
}

func (s session) Stale(generation uint64) bool {
	return generation < s.t.generation
}
