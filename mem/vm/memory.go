package vm

// A WordReader provides read access to the physical memory that holds the
// page tables. A read must never fail: the protected walk reads at addresses
// taken from pointer entries before their valid bit is checked.
type WordReader interface {
	ReadWord(addr uint32) uint32
}

// A WordWriter stores 32-bit words in physical memory. Translators never
// write; only loaders that lay out page tables do.
type WordWriter interface {
	WriteWord(addr uint32, value uint32) error
}

// WordReadWriter groups WordReader and WordWriter.
type WordReadWriter interface {
	WordReader
	WordWriter
}
