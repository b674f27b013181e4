package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// ItemKind distinguishes single products from kits (fixed bundles of products).
type ItemKind int

const (
	UnknownItemKind ItemKind = iota
	Product
	Kit
)

func (k ItemKind) String() string {
	switch k {
	case Product:
		return "PRODUCT"
	case Kit:
		return "KIT"
	case UnknownItemKind:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Validate rejects UnknownItemKind and out of range values.
func (k ItemKind) Validate() error {
	if k != Product && k != Kit {
		return errs.NewValueIsInvalidErrorWithCause("itemKind", fmt.Errorf("%d is not a valid item kind", k))
	}
	return nil
}

// ParseItemKind accepts "PRODUCT" and "KIT" in any case.
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRODUCT":
		return Product, nil
	case "KIT":
		return Kit, nil
	default:
		return UnknownItemKind, errs.NewValueIsInvalidErrorWithCause("itemKind", fmt.Errorf("%q is not PRODUCT or KIT", s))
	}
}

// ItemRef points to a product or a kit. It is comparable and used as the
// key when quantities are summed per request line.
type ItemRef struct {
	kind ItemKind
	id   UUID
}

// NewItemRef validates kind and id.
func NewItemRef(kind ItemKind, id UUID) (ItemRef, error) {
	if err := errors.Join(kind.Validate(), id.Validate()); err != nil {
		return ItemRef{}, err
	}
	return ItemRef{kind: kind, id: id}, nil
}

// ProductRef is a shorthand for NewItemRef(Product, id) when id is known to be valid.
func ProductRef(id UUID) ItemRef {
	return ItemRef{kind: Product, id: id}
}

// KitRef is a shorthand for NewItemRef(Kit, id) when id is known to be valid.
func KitRef(id UUID) ItemRef {
	return ItemRef{kind: Kit, id: id}
}

func (r ItemRef) Kind() ItemKind {
	return r.kind
}

func (r ItemRef) ID() UUID {
	return r.id
}

// IsProduct reports whether the reference points to a single product.
func (r ItemRef) IsProduct() bool {
	return r.kind == Product
}

// String renders "KIND:uuid", for example "KIT:550e8400-e29b-41d4-a716-446655440000".
func (r ItemRef) String() string {
	return r.kind.String() + ":" + r.id.String()
}

func (r ItemRef) Validate() error {
	return errors.Join(r.kind.Validate(), r.id.Validate())
}
