package mmu

import "github.com/sarchlab/mmusim/mem/vm"

// LegacyTranslator resolves 16-bit addresses through a single table of leaf
// entries. Permission bits are ignored: every valid page can be read,
// written and executed.
type LegacyTranslator struct {
	translator
}

// Resolve translates va using the legacy table at ctx.RootTable.
func (t *LegacyTranslator) Resolve(ctx vm.Context, va uint16) vm.Result {
	trans := t.begin(t, ModeLegacy, ctx, uint32(va), vm.AccessRead)

	vpn := vm.LegacyVPN(va)
	entry := vm.LeafEntry(t.readEntry(ctx.RootTable, vpn))
	if !entry.Valid() {
		return t.end(t, trans, vm.PageFault(uint32(vpn)))
	}

	pa := entry.PhysicalAddress(vm.LegacyOffset(va))

	return t.end(t, trans, vm.Success(pa))
}
