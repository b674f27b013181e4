package postgres

import (
	"context"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/deliveryrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/historyrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/outboxrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/requestrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/stockrepo"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents before children.
func Models() []any {
	return []any{
		&requestrepo.RequestDTO{},
		&requestrepo.RequestLineDTO{},
		&deliveryrepo.DeliveryDTO{},
		&deliveryrepo.DetailDTO{},
		&deliveryrepo.DeductionDTO{},
		&historyrepo.HistoryDTO{},
		&stockrepo.LotDTO{},
		&stockrepo.KitComponentDTO{},
		&outboxrepo.MessageDTO{},
	}
}

// Migrate creates or alters the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

// Truncate empties every table. Used by integration tests.
func Truncate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		"TRUNCATE TABLE requests, request_lines, deliveries, delivery_details, delivery_deductions, " +
			"delivery_history, stock_lots, kit_components, outbox_messages",
	).Error
}
