// Package memory provides the physical memory that holds page tables.
package memory

import (
	"errors"
	"sync"
)

// ErrOutOfCapacity is returned when an access reaches beyond the capacity of
// a storage.
var ErrOutOfCapacity = errors.New(
	"accessing physical address beyond the storage capacity")

// A Storage keeps the data of the simulated physical memory.
//
// The storage manages the memory in units, similar to the concept of page in
// memory management. For the units that are not touched by Write, no memory
// is allocated and reads return zeros.
type Storage struct {
	sync.RWMutex
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	storage := new(Storage)

	storage.unitSize = 4096
	storage.capacity = capacity
	storage.data = make(map[uint64][]byte)

	return storage
}

// Capacity returns the number of addressable bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// CanRead reports whether [address, address+len) lies within the storage.
func (s *Storage) CanRead(address uint64, len uint64) bool {
	return address+len >= address && address+len <= s.capacity
}

// CanWrite reports whether [address, address+len) lies within the storage.
func (s *Storage) CanWrite(address uint64, len uint64) bool {
	return s.CanRead(address, len)
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr
	return
}

// Read returns len bytes starting at address.
func (s *Storage) Read(address uint64, len uint64) ([]byte, error) {
	if !s.CanRead(address, len) {
		return nil, ErrOutOfCapacity
	}

	s.RLock()
	defer s.RUnlock()

	res := make([]byte, len)
	s.forEachChunk(address, len, func(unit []byte, inUnit, offset, n uint64) {
		if unit != nil {
			copy(res[offset:offset+n], unit[inUnit:inUnit+n])
		}
	}, false)

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	size := uint64(len(data))
	if !s.CanWrite(address, size) {
		return ErrOutOfCapacity
	}

	s.Lock()
	defer s.Unlock()

	s.forEachChunk(address, size, func(unit []byte, inUnit, offset, n uint64) {
		copy(unit[inUnit:inUnit+n], data[offset:offset+n])
	}, true)

	return nil
}

// forEachChunk splits [address, address+len) at unit boundaries. Units that
// were never written are passed as nil unless create is set.
func (s *Storage) forEachChunk(
	address, len uint64,
	fn func(unit []byte, inUnit, offset, n uint64),
	create bool,
) {
	offset := uint64(0)
	for offset < len {
		currAddr := address + offset
		baseAddr, inUnitAddr := s.parseAddress(currAddr)

		n := s.unitSize - inUnitAddr
		if len-offset < n {
			n = len - offset
		}

		unit, ok := s.data[baseAddr]
		if !ok && create {
			unit = make([]byte, s.unitSize)
			s.data[baseAddr] = unit
		}

		fn(unit, inUnitAddr, offset, n)
		offset += n
	}
}
