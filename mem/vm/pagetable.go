package vm

import (
	"fmt"
	"sync"
)

// A PageTableWriter lays out page tables in physical memory. It is used by
// loaders and tests to build the tables that translators walk; translators
// themselves never modify tables.
type PageTableWriter struct {
	sync.Mutex
	memory   WordReadWriter
	nextFree uint32
	limit    uint32
}

// NewPageTableWriter creates a writer that allocates tables from the region
// [base, limit) of memory. base is rounded up to a table boundary.
func NewPageTableWriter(
	memory WordReadWriter,
	base, limit uint32,
) *PageTableWriter {
	return &PageTableWriter{
		memory:   memory,
		nextFree: alignUp(base, TableSize),
		limit:    limit,
	}
}

func alignUp(addr, align uint32) uint32 {
	return (addr + align - 1) / align * align
}

// AllocTable reserves a zeroed table and returns its address.
func (w *PageTableWriter) AllocTable() (uint32, error) {
	w.Lock()
	defer w.Unlock()

	return w.allocTable()
}

func (w *PageTableWriter) allocTable() (uint32, error) {
	addr := w.nextFree
	if addr+TableSize > w.limit || addr+TableSize < addr {
		return 0, fmt.Errorf("page table region exhausted at 0x%08x", addr)
	}

	for i := 0; i < NumTableEntries; i++ {
		err := w.memory.WriteWord(EntryAddr(addr, uint8(i)), 0)
		if err != nil {
			return 0, err
		}
	}

	w.nextFree += TableSize

	return addr, nil
}

// MapLegacy writes entry into slot LegacyVPN(va) of the legacy table at root.
func (w *PageTableWriter) MapLegacy(root uint32, va uint16, entry LeafEntry) error {
	w.Lock()
	defer w.Unlock()

	return w.memory.WriteWord(EntryAddr(root, LegacyVPN(va)), uint32(entry))
}

// MapProtected makes va resolve to entry under the root table at root,
// creating the directory and page table on the way if they do not exist.
func (w *PageTableWriter) MapProtected(
	root uint32,
	va uint32,
	entry LeafEntry,
) error {
	w.Lock()
	defer w.Unlock()

	dir, err := w.childTable(EntryAddr(root, DirIndex(va)))
	if err != nil {
		return err
	}

	table, err := w.childTable(EntryAddr(dir, TableIndex(va)))
	if err != nil {
		return err
	}

	return w.memory.WriteWord(EntryAddr(table, EntryIndex(va)), uint32(entry))
}

// Unmap clears the valid bit of the leaf entry for va, keeping the
// intermediate tables.
func (w *PageTableWriter) Unmap(root uint32, va uint32) error {
	w.Lock()
	defer w.Unlock()

	dir := PointerEntry(w.memory.ReadWord(EntryAddr(root, DirIndex(va))))
	if !dir.Valid() {
		return nil
	}

	table := PointerEntry(w.memory.ReadWord(EntryAddr(dir.Address(), TableIndex(va))))
	if !table.Valid() {
		return nil
	}

	addr := EntryAddr(table.Address(), EntryIndex(va))
	leaf := LeafEntry(w.memory.ReadWord(addr))

	return w.memory.WriteWord(addr, uint32(leaf&^LeafValid))
}

func (w *PageTableWriter) childTable(slotAddr uint32) (uint32, error) {
	ptr := PointerEntry(w.memory.ReadWord(slotAddr))
	if ptr.Valid() {
		return ptr.Address(), nil
	}

	addr, err := w.allocTable()
	if err != nil {
		return 0, err
	}

	err = w.memory.WriteWord(slotAddr, uint32(NewPointerEntry(addr)))
	if err != nil {
		return 0, err
	}

	return addr, nil
}
