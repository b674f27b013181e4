package actor

import (
	"fmt"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// Capability is a single permission flag.
type Capability uint8

const (
	Authorizer Capability = 1 << iota
	Warehouse
	Dispatcher
	Admin
)

// AllCapabilities lists every flag in declaration order.
func AllCapabilities() []Capability {
	return []Capability{Authorizer, Warehouse, Dispatcher, Admin}
}

func (c Capability) String() string {
	switch c {
	case Authorizer:
		return "AUTHORIZER"
	case Warehouse:
		return "WAREHOUSE"
	case Dispatcher:
		return "DISPATCHER"
	case Admin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
}

// Validate accepts exactly one of the four flags.
func (c Capability) Validate() error {
	switch c {
	case Authorizer, Warehouse, Dispatcher, Admin:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("capability", fmt.Errorf("%d is not a single capability", c))
	}
}

// roleAliases maps legacy role strings (lower case) to capabilities.
// Matching is exact; "subadmin" or "bodega-norte" are unknown roles.
var roleAliases = map[string]Capability{
	"admin":         Admin,
	"administrador": Admin,
	"administrator": Admin,
	"autorizador":   Authorizer,
	"authorizer":    Authorizer,
	"bodega":        Warehouse,
	"warehouse":     Warehouse,
	"despachador":   Dispatcher,
	"dispatcher":    Dispatcher,
}

// ParseRole maps one legacy role string to a capability, ignoring case and
// surrounding blanks.
func ParseRole(role string) (Capability, error) {
	if c, ok := roleAliases[strings.ToLower(strings.TrimSpace(role))]; ok {
		return c, nil
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", role))
}

// Capabilities is a set of Capability flags.
type Capabilities uint8

// NewCapabilities builds a set from individual flags.
func NewCapabilities(cs ...Capability) Capabilities {
	var set Capabilities
	for _, c := range cs {
		set |= Capabilities(c)
	}
	return set
}

// ParseRoles parses every role and unions the result. Empty entries are skipped,
// so "bodega, despachador" and "bodega,,despachador" are equivalent.
func ParseRoles(roles ...string) (Capabilities, error) {
	var set Capabilities
	for _, r := range roles {
		if strings.TrimSpace(r) == "" {
			continue
		}
		c, err := ParseRole(r)
		if err != nil {
			return 0, err
		}
		set |= Capabilities(c)
	}
	return set, nil
}

// Has reports whether the set grants c. Admin implies every other capability;
// Admin itself is only granted by the Admin flag.
func (s Capabilities) Has(c Capability) bool {
	if s&Capabilities(c) != 0 {
		return true
	}
	return c != Admin && s&Capabilities(Admin) != 0
}

// Explicit reports whether c was granted directly, ignoring Admin widening.
func (s Capabilities) Explicit(c Capability) bool {
	return s&Capabilities(c) != 0
}

// IsEmpty reports whether no flag is set.
func (s Capabilities) IsEmpty() bool {
	return s == 0
}

// List returns the explicitly granted flags.
func (s Capabilities) List() []Capability {
	out := make([]Capability, 0, 4)
	for _, c := range AllCapabilities() {
		if s.Explicit(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Capabilities) String() string {
	names := make([]string, 0, 4)
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return strings.Join(names, "|")
}
