package delivery

import (
	"errors"
	"strings"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/guard"
)

var ErrReceptionIsNotConstructed = errors.New("Reception must be created via NewReception constructor")

// Reception identifies the beneficiary who received the goods.
// It is only present on DELIVERED deliveries.
type Reception struct {
	receivedBy        string
	receiverDocument  string
	receiverSignature string
	notes             string
	guard             guard.ConstructorGuard
}

// NewReception requires the receiver name and identity document. The signature
// (usually an encoded image reference) and notes are optional.
func NewReception(receivedBy, receiverDocument, receiverSignature, notes string) (Reception, error) {
	receivedBy = strings.TrimSpace(receivedBy)
	receiverDocument = strings.TrimSpace(receiverDocument)

	var byErr, docErr error
	if receivedBy == "" {
		byErr = errs.NewValueIsRequiredError("receivedBy")
	}
	if receiverDocument == "" {
		docErr = errs.NewValueIsRequiredError("receiverDocument")
	}
	if err := errors.Join(byErr, docErr); err != nil {
		return Reception{}, err
	}

	return Reception{
		receivedBy:        receivedBy,
		receiverDocument:  receiverDocument,
		receiverSignature: receiverSignature,
		notes:             notes,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (r Reception) ReceivedBy() string {
	return r.receivedBy
}

func (r Reception) ReceiverDocument() string {
	return r.receiverDocument
}

func (r Reception) ReceiverSignature() string {
	return r.receiverSignature
}

func (r Reception) Notes() string {
	return r.notes
}

func (r Reception) Validate() error {
	return r.guard.Validate(ErrReceptionIsNotConstructed)
}
