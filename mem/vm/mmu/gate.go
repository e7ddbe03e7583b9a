package mmu

import (
	"fmt"

	"github.com/sarchlab/mmusim/mem/vm"
)

// A Verdict is the decision of the permission gate. Every verdict other
// than VerdictPass names the rule that denied the access.
type Verdict int

// Gate verdicts, in the order the rules are checked.
const (
	VerdictPass Verdict = iota
	VerdictPrivilege
	VerdictExecute
	VerdictWrite
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictPrivilege:
		return "privilege-required"
	case VerdictExecute:
		return "not-executable"
	case VerdictWrite:
		return "read-only"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Gate checks whether access to the page described by entry is allowed. The
// first matching rule wins: privilege, then execute, then write. Reads are
// only ever denied by the privilege rule.
func Gate(entry vm.LeafEntry, access vm.AccessIntent, privileged bool) Verdict {
	switch {
	case !privileged && entry.RequiresPrivilege():
		return VerdictPrivilege
	case access == vm.AccessExecute && !entry.IsExecutable():
		return VerdictExecute
	case access == vm.AccessWrite && entry.IsReadOnly():
		return VerdictWrite
	default:
		return VerdictPass
	}
}
