package permission

import "fmt"

// Capability is a single coarse-grained capability bit.
type Capability uint8

const (
	// CapRead allows read access to market and account data.
	CapRead Capability = iota
	// CapWrite allows mutating account-scoped records.
	CapWrite
	// CapTrade allows submitting and cancelling trade orders.
	CapTrade
	// CapView allows viewing portfolio and advisor output.
	CapView
	// CapManageUsers allows administrative user management.
	CapManageUsers
	// CapManageSystem allows administrative system configuration.
	CapManageSystem

	capCount
)

var capNames = [capCount]string{
	CapRead:         "read",
	CapWrite:        "write",
	CapTrade:        "trade",
	CapView:         "view",
	CapManageUsers:  "manage_users",
	CapManageSystem: "manage_system",
}

// String returns the wire name of the capability.
func (c Capability) String() string {
	if c >= capCount {
		return "unknown"
	}
	return capNames[c]
}

// ParseCapability maps a wire name back to its [Capability] bit.
func ParseCapability(name string) (Capability, bool) {
	for c, n := range capNames {
		if n == name {
			return Capability(c), true
		}
	}
	return 0, false
}

// Set is a bitmask over [Capability] values. The zero value is the empty set.
type Set uint16

// NewSet builds a [Set] from individual capabilities.
func NewSet(caps ...Capability) Set {
	var s Set
	for _, c := range caps {
		s.Add(c)
	}
	return s
}

// Has reports whether the capability bit is present.
func (s Set) Has(c Capability) bool {
	if c >= capCount {
		return false
	}
	return s&(1<<c) != 0
}

// Add sets the capability bit. Out-of-range bits are ignored.
func (s *Set) Add(c Capability) {
	if c >= capCount {
		return
	}
	*s |= 1 << c
}

// Clear removes the capability bit.
func (s *Set) Clear(c Capability) {
	if c >= capCount {
		return
	}
	*s &^= 1 << c
}

// Count returns the number of capabilities in the set.
func (s Set) Count() int {
	n := 0
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Names returns the wire names of all capabilities in the set, in bit order.
// Used when embedding the set into token claims.
func (s Set) Names() []string {
	names := make([]string, 0, s.Count())
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			names = append(names, capNames[c])
		}
	}
	return names
}

// FromNames decodes a capability name list into a [Set]. Unknown names are
// rejected so that typos surface at the decode boundary.
func FromNames(names []string) (Set, error) {
	var s Set
	for _, name := range names {
		c, ok := ParseCapability(name)
		if !ok {
			return 0, fmt.Errorf("unknown capability %q", name)
		}
		s.Add(c)
	}
	return s, nil
}

// All returns the full capability set.
func All() Set {
	var s Set
	for c := Capability(0); c < capCount; c++ {
		s.Add(c)
	}
	return s
}
