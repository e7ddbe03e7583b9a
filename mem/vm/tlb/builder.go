package tlb

import "github.com/sarchlab/mmusim/sim/hooking"

// A Builder can build TLBs.
type Builder struct {
	hooks []hooking.Hook
}

// MakeBuilder returns a Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithHook registers a hook on every TLB the builder creates.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates a new TLB with every slot invalid.
func (b Builder) Build(name string) *TLB {
	t := &TLB{name: name}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}

	return t
}
