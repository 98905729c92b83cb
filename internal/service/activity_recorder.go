package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/pkg/jobs"
)

const activityJobType = "activity.append"

// ActivityRecorder pushes activity entries onto a background queue so feed
// writes never sit on the request path. Failed writes are retried by the
// queue and dropped with a log line once the attempt budget is spent.
type ActivityRecorder struct {
	repo   activityAppender
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewActivityRecorder wires the recorder and its queue. Call Start before
// serving traffic and Stop during shutdown.
func NewActivityRecorder(repo activityAppender, cfg jobs.QueueConfig, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ActivityRecorder{repo: repo, logger: logger}
	r.queue = jobs.NewQueue("activity", r.handle, cfg)
	return r
}

// Start launches the queue workers.
func (r *ActivityRecorder) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop drains the queue workers.
func (r *ActivityRecorder) Stop() {
	r.queue.Stop()
}

// Append enqueues the entry for asynchronous persistence.
func (r *ActivityRecorder) Append(ctx context.Context, entry *models.ActivityEntry) error {
	return r.queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("%s:%s", entry.UserID, entry.Type),
		Type:    activityJobType,
		Payload: entry,
	})
}

func (r *ActivityRecorder) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.ActivityEntry)
	if !ok {
		r.logger.Sugar().Errorw("unexpected activity payload", "job_id", job.ID)
		return nil
	}
	return r.repo.Append(ctx, entry)
}
