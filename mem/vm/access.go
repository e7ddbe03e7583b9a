package vm

import (
	"fmt"
	"strings"
)

// AccessIntent tells what the instruction wants to do with the address.
type AccessIntent int

// Access intents.
const (
	AccessRead AccessIntent = iota
	AccessWrite
	AccessExecute
)

func (a AccessIntent) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessExecute:
		return "execute"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

// ParseAccessIntent converts "read", "write" or "execute" (or their first
// letter) into an AccessIntent.
func ParseAccessIntent(s string) (AccessIntent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read", "r":
		return AccessRead, nil
	case "write", "w":
		return AccessWrite, nil
	case "execute", "exec", "x":
		return AccessExecute, nil
	}

	return AccessRead, fmt.Errorf("unknown access intent %q", s)
}
