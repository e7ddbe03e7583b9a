package mmu

import "github.com/sarchlab/mmusim/mem/vm"

// A walk holds the three words read for one protected translation.
type walk struct {
	dir   vm.PointerEntry
	table vm.PointerEntry
	leaf  vm.LeafEntry
}

// fetch reads every level of the walk before any valid bit is examined, the
// way a pipelined walker issues its loads. Words read through an invalid
// pointer are discarded by check.
func (t *ProtectedTranslator) fetch(root uint32, va uint32) walk {
	var w walk

	w.dir = vm.PointerEntry(t.readEntry(root, vm.DirIndex(va)))
	w.table = vm.PointerEntry(t.readEntry(w.dir.Address(), vm.TableIndex(va)))
	w.leaf = vm.LeafEntry(t.readEntry(w.table.Address(), vm.EntryIndex(va)))

	return w
}

// check validates the fetched levels from the root down. It returns the
// leaf entry and true if all levels are valid, or the result to report
// otherwise. An invalid directory or table pointer is reported as
// unresolved rather than as a page fault.
func (w walk) check(va uint32) (vm.LeafEntry, vm.Result, bool) {
	switch {
	case !w.dir.Valid():
		return 0, vm.Unresolved(), false
	case !w.table.Valid():
		return 0, vm.Unresolved(), false
	case !w.leaf.Valid():
		return 0, vm.PageFault(vm.VPN24(va)), false
	}

	return w.leaf, vm.Result{}, true
}
