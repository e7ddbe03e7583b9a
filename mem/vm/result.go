package vm

import "fmt"

// Status tells which kind of outcome a Result holds.
type Status int

// The zero Status is StatusUnresolved, so a zero Result is unresolved.
const (
	StatusUnresolved Status = iota
	StatusSuccess
	StatusPageFault
	StatusProtFault
)

func (s Status) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusSuccess:
		return "success"
	case StatusPageFault:
		return "page-fault"
	case StatusProtFault:
		return "prot-fault"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// A Result is the outcome of one translation. It carries exactly one payload
// and the payload can only be read through the accessor of its kind.
type Result struct {
	status Status
	value  uint32
}

// Success creates a result holding a physical address.
func Success(pa uint32) Result {
	return Result{status: StatusSuccess, value: pa}
}

// PageFault creates a result holding the virtual page number that has no
// valid mapping.
func PageFault(vpn uint32) Result {
	return Result{status: StatusPageFault, value: vpn}
}

// ProtFault creates a result holding the leaf entry that denied the access.
func ProtFault(entry LeafEntry) Result {
	return Result{status: StatusProtFault, value: uint32(entry)}
}

// Unresolved creates the result of a walk that stopped at an invalid
// directory or table pointer.
func Unresolved() Result {
	return Result{status: StatusUnresolved}
}

// Status returns the kind of the result.
func (r Result) Status() Status {
	return r.status
}

// PhysicalAddress returns the translated address of a successful result.
func (r Result) PhysicalAddress() (pa uint32, ok bool) {
	if r.status != StatusSuccess {
		return 0, false
	}

	return r.value, true
}

// VPN returns the faulting virtual page number of a page fault.
func (r Result) VPN() (vpn uint32, ok bool) {
	if r.status != StatusPageFault {
		return 0, false
	}

	return r.value, true
}

// Entry returns the offending leaf entry of a protection fault.
func (r Result) Entry() (entry LeafEntry, ok bool) {
	if r.status != StatusProtFault {
		return 0, false
	}

	return LeafEntry(r.value), true
}

func (r Result) String() string {
	switch r.status {
	case StatusSuccess:
		return fmt.Sprintf("success pa=0x%08x", r.value)
	case StatusPageFault:
		return fmt.Sprintf("page-fault vpn=0x%06x", r.value)
	case StatusProtFault:
		return fmt.Sprintf("prot-fault pte=0x%08x", r.value)
	default:
		return r.status.String()
	}
}
