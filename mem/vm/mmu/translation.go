package mmu

import (
	"fmt"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/sim/hooking"
	"github.com/sarchlab/mmusim/sim/id"
)

// Hook positions of the translators.
var (
	HookPosTranslationStart = &hooking.HookPos{Name: "TranslationStart"}
	HookPosTranslationEnd   = &hooking.HookPos{Name: "TranslationEnd"}
	HookPosPermissionDenied = &hooking.HookPos{Name: "PermissionDenied"}
)

// Mode is the addressing mode a translation runs in.
type Mode int

// Addressing modes.
const (
	ModeLegacy Mode = iota
	ModeProtected
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeProtected:
		return "protected"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// A Translation is the hook item describing one request. Result is only set
// when the translation ends. Legacy translations carry AccessRead.
type Translation struct {
	ID         string
	Mode       Mode
	VAddr      uint32
	Access     vm.AccessIntent
	Privileged bool
	TLBHit     bool
	Result     vm.Result
}

// translator holds what the legacy and the protected translators share.
type translator struct {
	hooking.HookableBase

	name   string
	memory vm.WordReader
	idGen  id.IDGenerator
}

// Name returns the name of the translator.
func (t *translator) Name() string {
	return t.name
}

func (t *translator) readEntry(table uint32, index uint8) uint32 {
	return t.memory.ReadWord(vm.EntryAddr(table, index))
}

func (t *translator) begin(
	domain hooking.Hookable,
	mode Mode,
	ctx vm.Context,
	va uint32,
	access vm.AccessIntent,
) *Translation {
	if t.NumHooks() == 0 {
		return nil
	}

	trans := &Translation{
		ID:         t.idGen.Generate(),
		Mode:       mode,
		VAddr:      va,
		Access:     access,
		Privileged: ctx.Privileged,
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Pos:    HookPosTranslationStart,
		Item:   trans,
	})

	return trans
}

func (t *translator) end(
	domain hooking.Hookable,
	trans *Translation,
	res vm.Result,
) vm.Result {
	if trans == nil {
		return res
	}

	trans.Result = res
	t.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Pos:    HookPosTranslationEnd,
		Item:   trans,
	})

	return res
}
