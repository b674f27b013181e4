package cmd

import (
	"context"
	"errors"
	"log/slog"

	httpin "github.com/ticinfraestructura/sigah-sub000/internal/adapters/in/http"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/elastic"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/historyrepo"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/rediscache"
	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/servicebus"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/queries"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
	"github.com/ticinfraestructura/sigah-sub000/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	cache     ports.PendingWorkCache
	publisher ports.WorkItemPublisher
	indexer   ports.HistoryIndexer
	closers   []func(context.Context) error
}

// NewCompositionRoot connects the optional outbound adapters. Redis,
// Service Bus and Elasticsearch are used when configured; otherwise work item
// events and history records go to the log and pending work is not cached.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		publisher:  servicebus.NewLogPublisher(logger),
		indexer:    elastic.NewLogIndexer(logger),
	}

	if cfg.RedisAddr != "" {
		cache, err := rediscache.NewPendingWorkCache(ctx, rediscache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, err
		}
		root.cache = cache
		root.closers = append(root.closers, func(context.Context) error { return cache.Close() })
	}

	if cfg.ServiceBusConnectionString != "" {
		publisher, err := servicebus.NewPublisher(cfg.ServiceBusConnectionString, cfg.ServiceBusQueue)
		if err != nil {
			_ = root.Close(ctx)
			return nil, err
		}
		root.publisher = publisher
		root.closers = append(root.closers, publisher.Close)
	}

	if len(cfg.ElasticsearchURLs) > 0 {
		indexer, err := elastic.NewHistoryIndexer(elastic.Config{
			Addresses: cfg.ElasticsearchURLs,
			Username:  cfg.ElasticsearchUsername,
			Password:  cfg.ElasticsearchPassword,
			Index:     cfg.ElasticsearchIndex,
		})
		if err == nil {
			err = indexer.Ping(ctx)
		}
		if err != nil {
			_ = root.Close(ctx)
			return nil, err
		}
		root.indexer = indexer
	}

	return root, nil
}

// Close releases the outbound adapters in reverse order.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, c.closers[i](ctx))
	}
	c.closers = nil
	return err
}

func (c *CompositionRoot) workflowUoWFactory() commands.WorkflowUoWFactory {
	return FuncWorkflowUoWFactory(func() commands.WorkflowUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCommandHandlers() httpin.CommandHandlers {
	f := c.workflowUoWFactory()
	return httpin.CommandHandlers{
		Create:           commands.NewCreateDeliveryCommandHandler(f),
		Authorize:        commands.NewAuthorizeDeliveryCommandHandler(f),
		Receive:          commands.NewReceiveInWarehouseCommandHandler(f),
		StartPreparation: commands.NewStartPreparationCommandHandler(f),
		MarkReady:        commands.NewMarkReadyCommandHandler(f),
		Confirm:          commands.NewConfirmDeliveryCommandHandler(f),
		Cancel:           commands.NewCancelDeliveryCommandHandler(f),
	}
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler() commands.RelayOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRelayOutboxCommandHandler(f, c.publisher, c.indexer, c.cache)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDeliveryHistoryQueryHandler() queries.GetDeliveryHistoryQueryHandler {
	return queries.NewGetDeliveryHistoryQueryHandler(historyrepo.NewGormAuditLog(c.gormDB))
}

func (c *CompositionRoot) CreateGetPendingWorkQueryHandler() queries.GetPendingWorkQueryHandler {
	return queries.NewGetPendingWorkQueryHandler(c.gormDB, c.cache, c.logger)
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(c.CreateCommandHandlers(), httpin.QueryHandlers{
		Delivery:    c.CreateGetDeliveryQueryHandler(),
		History:     c.CreateGetDeliveryHistoryQueryHandler(),
		PendingWork: c.CreateGetPendingWorkQueryHandler(),
	}, c.logger)
}

// HealthCheck pings the database.
func (c *CompositionRoot) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager().
		Add("outbox relay", jobs.NewOutboxRelayJob(
			c.CreateRelayOutboxCommandHandler(),
			c.cfg.RelaySchedule,
			c.cfg.RelayBatchSize,
			c.cfg.RelayMaxAttempts,
			c.logger,
		)).
		Add("pending work report", jobs.NewPendingWorkReportJob(
			c.CreateGetPendingWorkQueryHandler(),
			c.cfg.ReportSchedule,
			c.logger,
		))
}

type FuncWorkflowUoWFactory func() commands.WorkflowUoW

func (f FuncWorkflowUoWFactory) Create() commands.WorkflowUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
