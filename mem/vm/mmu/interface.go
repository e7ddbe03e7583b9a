package mmu

import "github.com/sarchlab/mmusim/mem/vm/tlb"

// A Cache is the translation cache the protected translator consults.
// *tlb.TLB implements it.
type Cache interface {
	Atomic(fn func(s tlb.Session))
}
