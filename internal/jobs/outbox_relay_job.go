package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/commands"
)

// DefaultOutboxRelaySchedule runs the relay every five seconds.
const DefaultOutboxRelaySchedule = "*/5 * * * * *"

// OutboxRelayJob drains the outbox on a schedule. A run that is still busy
// when the next tick fires makes that tick a no-op.
type OutboxRelayJob struct {
	handler     commands.RelayOutboxCommandHandler
	schedule    string
	batchSize   int
	maxAttempts int
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewOutboxRelayJob(
	handler commands.RelayOutboxCommandHandler,
	schedule string,
	batchSize, maxAttempts int,
	logger *slog.Logger,
) *OutboxRelayJob {
	if schedule == "" {
		schedule = DefaultOutboxRelaySchedule
	}
	return &OutboxRelayJob{
		handler:     handler,
		schedule:    schedule,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		cron:        cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:      logger.With("component", "outbox_relay_job"),
	}
}

// Run relays one batch.
func (j *OutboxRelayJob) Run(ctx context.Context) (commands.RelayOutboxResult, error) {
	cmd, err := commands.NewRelayOutboxCommand(j.batchSize, j.maxAttempts)
	if err != nil {
		return commands.RelayOutboxResult{}, err
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay failed", "error", err)
		return result, err
	}
	if result.Published > 0 || result.Failed > 0 {
		j.logger.InfoContext(ctx, "Outbox relayed", "published", result.Published, "failed", result.Failed)
	}
	return result, nil
}

func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running relay to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
