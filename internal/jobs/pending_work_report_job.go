package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/application/usecases/queries"
)

// DefaultPendingWorkReportSchedule reports every fifteen minutes.
const DefaultPendingWorkReportSchedule = "0 */15 * * * *"

type PendingWorkReader interface {
	Handle(ctx context.Context, query queries.GetPendingWorkQuery) ([]queries.GetPendingWorkQueryResponse, error)
}

// PendingWorkReportJob logs how many deliveries wait on each operational role.
type PendingWorkReportJob struct {
	reader   PendingWorkReader
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewPendingWorkReportJob(reader PendingWorkReader, schedule string, logger *slog.Logger) *PendingWorkReportJob {
	if schedule == "" {
		schedule = DefaultPendingWorkReportSchedule
	}
	return &PendingWorkReportJob{
		reader:   reader,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "pending_work_report_job"),
	}
}

func (j *PendingWorkReportJob) Run(ctx context.Context) error {
	query, err := queries.NewGetPendingWorkQuery(nil)
	if err != nil {
		return err
	}
	queues, err := j.reader.Handle(ctx, query)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending work report failed", "error", err)
		return err
	}

	for _, q := range queues {
		attrs := []any{"role", q.Role.String(), "count", q.Count}
		if q.Count > 0 {
			attrs = append(attrs, "oldest", q.Items[0].Code, "oldest_updated_at", q.Items[0].UpdatedAt)
		}
		j.logger.InfoContext(ctx, "Pending work", attrs...)
	}
	return nil
}

func (j *PendingWorkReportJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_ = j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pending work report job started", "schedule", j.schedule)
	return nil
}

func (j *PendingWorkReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Pending work report job stopped")
}
