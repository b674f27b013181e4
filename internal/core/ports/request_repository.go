package ports

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/kernel"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/request"
)

// RequestRepository stores the local snapshot of beneficiary requests.
type RequestRepository interface {
	// Add seeds a request. In production the request service owns the rows;
	// the workflow only reads and updates them.
	Add(ctx context.Context, aggregate *request.Request) error

	Get(ctx context.Context, id kernel.UUID) (*request.Request, error)

	// GetForUpdate loads the request and holds it until the transaction ends,
	// serializing quantity checks across deliveries of the same request.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*request.Request, error)

	// Update writes status and delivered quantities with an optimistic version check.
	Update(ctx context.Context, aggregate *request.Request) error
}
