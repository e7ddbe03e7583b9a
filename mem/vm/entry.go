package vm

import "fmt"

// A PointerEntry is a root-table or directory word that points at the next
// level table.
//
//	31.......................................4 3....1   0
//	+-----------------------------------------+------+-----+
//	| Address of next-level table             |Unused|Valid|
//	+-----------------------------------------+------+-----+
type PointerEntry uint32

// PointerValid marks a pointer entry as present.
const PointerValid PointerEntry = 1

const pointerAddrMask = ^uint32(0xF)

// NewPointerEntry creates a valid pointer entry to the table at addr. The low
// four bits of addr are dropped.
func NewPointerEntry(addr uint32) PointerEntry {
	return PointerEntry(addr&pointerAddrMask) | PointerValid
}

// Valid reports bit 0.
func (e PointerEntry) Valid() bool {
	return e&PointerValid != 0
}

// Address returns the next-level table address with the flag bits cleared.
func (e PointerEntry) Address() uint32 {
	return uint32(e) & pointerAddrMask
}

func (e PointerEntry) String() string {
	return fmt.Sprintf("ptr{addr:0x%08x valid:%t}", e.Address(), e.Valid())
}

// A LeafEntry is the page-table word that maps a virtual page to a physical
// page. Legacy mode uses the same format and ignores the permission bits.
//
//	31    30..28 27.........................4 3 2 1 0
//	+-----+------+----------------------------+-+-+-+-+
//	|Valid|unused| 24-bit Physical Page Number|P|R|W|X|
//	+-----+------+----------------------------+-+-+-+-+
type LeafEntry uint32

// Flag bits of a leaf entry.
const (
	LeafExecute    LeafEntry = 1 << 0
	LeafWrite      LeafEntry = 1 << 1
	LeafRead       LeafEntry = 1 << 2
	LeafPrivileged LeafEntry = 1 << 3
	LeafValid      LeafEntry = 1 << 31

	leafPermMask  LeafEntry = 0xF
	leafPPNShift            = 4
	leafPPNMask             = 0xFFFFFF
)

// NewLeafEntry creates a valid leaf entry mapping to ppn with the given
// permission flags.
func NewLeafEntry(ppn uint32, perm LeafEntry) LeafEntry {
	return LeafValid |
		LeafEntry(ppn&leafPPNMask)<<leafPPNShift |
		perm&leafPermMask
}

// Valid reports bit 31. This is not the same bit as PointerEntry.Valid.
func (e LeafEntry) Valid() bool {
	return e&LeafValid != 0
}

// PPN returns the 24-bit physical page number.
func (e LeafEntry) PPN() uint32 {
	return uint32(e>>leafPPNShift) & leafPPNMask
}

// RequiresPrivilege reports whether only privileged code may use the page.
func (e LeafEntry) RequiresPrivilege() bool {
	return e&LeafPrivileged != 0
}

// IsExecutable reports the execute bit.
func (e LeafEntry) IsExecutable() bool {
	return e&LeafExecute != 0
}

// IsReadOnly reports whether the page is readable but not writable.
func (e LeafEntry) IsReadOnly() bool {
	return e&(LeafRead|LeafWrite) == LeafRead
}

// PhysicalAddress combines the entry's physical page with an in-page offset.
func (e LeafEntry) PhysicalAddress(offset uint8) uint32 {
	return e.PPN()<<Log2PageSize | uint32(offset)
}

func (e LeafEntry) String() string {
	perm := []byte("----")
	for i, f := range []struct {
		flag LeafEntry
		c    byte
	}{{LeafPrivileged, 'P'}, {LeafRead, 'R'}, {LeafWrite, 'W'}, {LeafExecute, 'X'}} {
		if e&f.flag != 0 {
			perm[i] = f.c
		}
	}

	return fmt.Sprintf("pte{ppn:0x%06x %s valid:%t}", e.PPN(), perm, e.Valid())
}
