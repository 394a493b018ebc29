package domain

import (
	"fmt"
	"strings"
)

// Address protocols.
const (
	ProtocolLocal = "local"
	ProtocolPath  = "path"
)

// dynamicPrefix marks a local locator that must be resolved instead of looked up.
const dynamicPrefix = "!"

// Address is the parsed form of "<protocol>:<locator>".
type Address struct {
	Protocol string
	Locator  string
	// Dynamic is set when the locator is a dotted path to resolve
	// ("local:!pkg.Type" or the "path:" sugar).
	Dynamic bool
}

// ParseAddress parses an address string. "path:x" is normalized to "local:!x".
func ParseAddress(s string) (Address, error) {
	protocol, locator, ok := strings.Cut(s, ":")
	if !ok || protocol == "" || locator == "" {
		return Address{}, fmt.Errorf("%w: malformed address %q, expected <protocol>:<locator>", ErrRegistration, s)
	}

	switch protocol {
	case ProtocolLocal:
		if rest, dynamic := strings.CutPrefix(locator, dynamicPrefix); dynamic {
			if rest == "" {
				return Address{}, fmt.Errorf("%w: empty locator in %q", ErrRegistration, s)
			}
			return Address{Protocol: ProtocolLocal, Locator: rest, Dynamic: true}, nil
		}
		return Address{Protocol: ProtocolLocal, Locator: locator}, nil
	case ProtocolPath:
		return Address{Protocol: ProtocolLocal, Locator: locator, Dynamic: true}, nil
	default:
		return Address{}, fmt.Errorf("%w: unsupported protocol %q in %q", ErrRegistration, protocol, s)
	}
}

// LocalAddress returns the address of an already registered process.
func LocalAddress(name string) string {
	return ProtocolLocal + ":" + name
}

func (a Address) String() string {
	if a.Dynamic {
		return a.Protocol + ":" + dynamicPrefix + a.Locator
	}
	return a.Protocol + ":" + a.Locator
}
