package mmu

import (
	"sync"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// Stats is a snapshot of the counters of an OutcomeCounter.
type Stats struct {
	Translations  uint64            `json:"translations"`
	Outcomes      map[string]uint64 `json:"outcomes"`
	Denials       map[string]uint64 `json:"denials"`
	TLBHits       uint64            `json:"tlb_hits"`
	TLBMisses     uint64            `json:"tlb_misses"`
	TLBInserts    uint64            `json:"tlb_inserts"`
	TLBDuplicates uint64            `json:"tlb_duplicate_inserts"`
	TLBFlushes    uint64            `json:"tlb_flushes"`
}

// OutcomeCounter is a hook that counts translation outcomes, gate denials
// and TLB events. Attach it to translators, TLBs or both.
type OutcomeCounter struct {
	lock  sync.Mutex
	stats Stats
}

// NewOutcomeCounter creates an OutcomeCounter with all counters at zero.
func NewOutcomeCounter() *OutcomeCounter {
	return &OutcomeCounter{
		stats: Stats{
			Outcomes: make(map[string]uint64),
			Denials:  make(map[string]uint64),
		},
	}
}

// Func updates the counters.
func (c *OutcomeCounter) Func(ctx hooking.HookCtx) {
	c.lock.Lock()
	defer c.lock.Unlock()

	switch ctx.Pos {
	case HookPosTranslationEnd:
		trans := ctx.Item.(*Translation)
		c.stats.Translations++
		c.stats.Outcomes[trans.Result.Status().String()]++
	case HookPosPermissionDenied:
		c.stats.Denials[ctx.Detail.(Verdict).String()]++
	case tlb.HookPosHit:
		c.stats.TLBHits++
	case tlb.HookPosMiss:
		c.stats.TLBMisses++
	case tlb.HookPosInsert:
		c.stats.TLBInserts++
		if ctx.Item.(tlb.Access).Outcome == tlb.InsertDuplicate {
			c.stats.TLBDuplicates++
		}
	case tlb.HookPosFlush:
		c.stats.TLBFlushes++
	}
}

// Count returns how many translations ended with the given status.
func (c *OutcomeCounter) Count(status vm.Status) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.stats.Outcomes[status.String()]
}

// Stats returns a copy of all the counters.
func (c *OutcomeCounter) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	s := c.stats
	s.Outcomes = make(map[string]uint64, len(c.stats.Outcomes))
	for k, v := range c.stats.Outcomes {
		s.Outcomes[k] = v
	}

	s.Denials = make(map[string]uint64, len(c.stats.Denials))
	for k, v := range c.stats.Denials {
		s.Denials[k] = v
	}

	return s
}
