package memory

import (
	"encoding/binary"
)

// A WordView accesses a Controller as little-endian 32-bit words. It
// implements the word interfaces the translators and page-table writers use.
type WordView struct {
	ctrl Controller
}

// NewWordView creates a WordView on ctrl.
func NewWordView(ctrl Controller) *WordView {
	return &WordView{ctrl: ctrl}
}

// ReadWord returns the word at addr. Addresses that cannot be read yield 0,
// since a table walk may read through pointers that turn out to be invalid.
func (v *WordView) ReadWord(addr uint32) uint32 {
	if !v.ctrl.CanRead(uint64(addr), 4) {
		return 0
	}

	data, err := v.ctrl.Read(uint64(addr), 4)
	if err != nil {
		return 0
	}

	return binary.LittleEndian.Uint32(data)
}

// WriteWord stores value at addr.
func (v *WordView) WriteWord(addr uint32, value uint32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)

	return v.ctrl.Write(uint64(addr), data)
}
