package mmu

import (
	"log"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
	"github.com/sarchlab/mmusim/sim/id"
)

// A Builder can build translators.
type Builder struct {
	memory vm.WordReader
	tlb    Cache
	idGen  id.IDGenerator
	hooks  []hooking.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithMemory sets the physical memory that holds the page tables.
func (b Builder) WithMemory(memory vm.WordReader) Builder {
	b.memory = memory
	return b
}

// WithTLB sets the TLB used by protected translators. If not set, each
// protected translator gets a private TLB named "<name>.TLB".
func (b Builder) WithTLB(cache Cache) Builder {
	b.tlb = cache
	return b
}

// WithIDGenerator sets the generator of translation IDs reported to hooks.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithHook registers a hook on every translator the builder creates.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// BuildLegacy creates a 16-bit legacy translator.
func (b Builder) BuildLegacy(name string) *LegacyTranslator {
	t := &LegacyTranslator{}
	b.configureTranslator(name, &t.translator)

	return t
}

// BuildProtected creates a 32-bit protected translator.
func (b Builder) BuildProtected(name string) *ProtectedTranslator {
	t := &ProtectedTranslator{}
	b.configureTranslator(name, &t.translator)

	t.tlb = b.tlb
	if t.tlb == nil {
		t.tlb = tlb.MakeBuilder().Build(name + ".TLB")
	}

	return t
}

func (b Builder) configureTranslator(name string, t *translator) {
	if b.memory == nil {
		log.Panicf("translator %s has no memory", name)
	}

	t.name = name
	t.memory = b.memory

	t.idGen = b.idGen
	if t.idGen == nil {
		t.idGen = id.NewIDGenerator()
	}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}
}
