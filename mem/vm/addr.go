package vm

// Both translation modes use 256-byte pages and 256-entry tables of 32-bit
// words.
const (
	Log2PageSize    = 8
	PageSize        = 1 << Log2PageSize
	NumTableEntries = 256
	EntrySize       = 4
	TableSize       = NumTableEntries * EntrySize
)

// LegacyVPN returns the 8-bit virtual page number of a 16-bit address.
func LegacyVPN(va uint16) uint8 {
	return uint8(va >> 8)
}

// LegacyOffset returns the in-page offset of a 16-bit address.
func LegacyOffset(va uint16) uint8 {
	return uint8(va)
}

// DirIndex selects the entry in the root table (bits 31..24).
func DirIndex(va uint32) uint8 {
	return uint8(va >> 24)
}

// TableIndex selects the entry in the directory (bits 23..16).
func TableIndex(va uint32) uint8 {
	return uint8(va >> 16)
}

// EntryIndex selects the leaf entry in the page table (bits 15..8).
func EntryIndex(va uint32) uint8 {
	return uint8(va >> 8)
}

// PageOffset returns bits 7..0 of a 32-bit address.
func PageOffset(va uint32) uint8 {
	return uint8(va)
}

// VPN24 strips the page offset from a 32-bit address.
func VPN24(va uint32) uint32 {
	return (va >> Log2PageSize) & 0xFFFFFF
}

// TLBIndex returns the TLB slot a virtual page number maps to.
func TLBIndex(vpn24 uint32) uint8 {
	return uint8(vpn24 & 0xFF)
}

// TLBTag returns the bits of a virtual page number that disambiguate the
// pages sharing a TLB slot.
func TLBTag(vpn24 uint32) uint16 {
	return uint16((vpn24 >> 8) & 0xFFFF)
}

// EntryAddr returns the address of the index-th word of the table starting
// at base.
func EntryAddr(base uint32, index uint8) uint32 {
	return base + uint32(index)*EntrySize
}
