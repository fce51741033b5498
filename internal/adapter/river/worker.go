package river

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

// NotificationWorker delivers queued notifications into the recipient's inbox.
// Push delivery would hang off the same job.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]

	inbox domain.NotificationRepository
	log   *logger.Logger
}

// Work processes a single notification job. Inbox writes ignore duplicate ids,
// so a retried job does not deliver twice.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	ctx = w.log.WithFields(ctx, map[string]any{
		"job_id":         job.ID,
		"attempt":        job.Attempt,
		"notification":   job.Args.NotificationKind,
		"recipient_id":   job.Args.RecipientID,
		"application_id": job.Args.ApplicationID,
	})

	if err := w.inbox.Create(ctx, job.Args.notification()); err != nil {
		w.log.Error(ctx, "storing notification failed", err)
		return fmt.Errorf("storing notification: %w", err)
	}

	w.log.Info(ctx, "notification delivered")
	return nil
}
