package mmu

import (
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// ProtectedTranslator resolves 32-bit addresses through a three-level table
// walk with permission checks, caching leaf entries in a TLB.
type ProtectedTranslator struct {
	translator

	tlb Cache
}

// Resolve translates va for the given access. The TLB probe, the walk on a
// miss and the TLB refresh run as one atomic unit on the TLB. A request
// whose context predates the latest task switch walks the tables of its own
// snapshot and leaves the TLB alone.
func (t *ProtectedTranslator) Resolve(
	ctx vm.Context,
	va uint32,
	access vm.AccessIntent,
) vm.Result {
	trans := t.begin(t, ModeProtected, ctx, va, access)

	vpn := vm.VPN24(va)
	index := vm.TLBIndex(vpn)
	tag := vm.TLBTag(vpn)

	var res vm.Result
	t.tlb.Atomic(func(s tlb.Session) {
		cacheable := !s.Stale(ctx.Generation)

		if cacheable {
			entry, hit := s.Search(index, tag)
			if hit {
				if trans != nil {
					trans.TLBHit = true
				}

				res = t.gateAndRefresh(s, ctx, trans, va, access, entry, true)

				return
			}
		}

		leaf, fault, ok := t.fetch(ctx.RootTable, va).check(va)
		if !ok {
			res = fault
			return
		}

		res = t.gateAndRefresh(s, ctx, trans, va, access, leaf, cacheable)
	})

	return t.end(t, trans, res)
}

// gateAndRefresh applies the permission gate to entry. A passing entry is
// written back to the TLB when refresh is set, even when it came from the
// TLB; a failing entry leaves the TLB untouched.
func (t *ProtectedTranslator) gateAndRefresh(
	s tlb.Session,
	ctx vm.Context,
	trans *Translation,
	va uint32,
	access vm.AccessIntent,
	entry vm.LeafEntry,
	refresh bool,
) vm.Result {
	verdict := Gate(entry, access, ctx.Privileged)
	if verdict != VerdictPass {
		t.permissionDenied(trans, verdict)
		return vm.ProtFault(entry)
	}

	if refresh {
		vpn := vm.VPN24(va)
		s.Insert(vm.TLBIndex(vpn), vm.TLBTag(vpn), entry)
	}

	return vm.Success(entry.PhysicalAddress(vm.PageOffset(va)))
}

func (t *ProtectedTranslator) permissionDenied(
	trans *Translation,
	verdict Verdict,
) {
	if trans == nil {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosPermissionDenied,
		Item:   trans,
		Detail: verdict,
	})
}
