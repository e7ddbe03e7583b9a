package mmu

import (
	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// TranslationTable is the table a TranslationRecorder writes to.
const TranslationTable = "translation"

// TranslationEntry is one row of the translation table.
type TranslationEntry struct {
	ID         string
	Translator string
	Mode       string
	VAddr      uint64
	Access     string
	Privileged bool
	TLBHit     bool
	Status     string
	Value      uint64
}

// A TranslationRecorder is a hook that writes every finished translation
// into a DataRecorder.
type TranslationRecorder struct {
	recorder datarecording.DataRecorder
}

// NewTranslationRecorder creates the translation table in recorder and
// returns a hook that fills it.
func NewTranslationRecorder(
	recorder datarecording.DataRecorder,
) *TranslationRecorder {
	recorder.CreateTable(TranslationTable, TranslationEntry{})

	return &TranslationRecorder{recorder: recorder}
}

// Func records translations when they end.
func (r *TranslationRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosTranslationEnd {
		return
	}

	trans := ctx.Item.(*Translation)
	r.recorder.InsertData(TranslationTable, TranslationEntry{
		ID:         trans.ID,
		Translator: ctx.Domain.Name(),
		Mode:       trans.Mode.String(),
		VAddr:      uint64(trans.VAddr),
		Access:     trans.Access.String(),
		Privileged: trans.Privileged,
		TLBHit:     trans.TLBHit,
		Status:     trans.Result.Status().String(),
		Value:      uint64(resultValue(trans.Result)),
	})
}

func resultValue(res vm.Result) uint32 {
	if pa, ok := res.PhysicalAddress(); ok {
		return pa
	}

	if vpn, ok := res.VPN(); ok {
		return vpn
	}

	if entry, ok := res.Entry(); ok {
		return uint32(entry)
	}

	return 0
}
