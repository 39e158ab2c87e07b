package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-tams/b2prune/internal/notify"
)

const notificationTimeout = 5 * time.Second

// NotifyResult reports a finished prune run through the dispatcher. The
// notification context is detached from the run's cancellation so a timed-out
// run can still report its own failure.
func NotifyResult(ctx context.Context, dispatcher *notify.Dispatcher, res PruneResult, runErr error, verbose bool) {
	if dispatcher == nil {
		return
	}

	status := notify.StatusSuccess
	errMsg := ""
	if runErr != nil {
		status = notify.StatusFailure
		errMsg = runErr.Error()
	}

	event := notify.Event{
		Bucket:   res.Bucket,
		Status:   status,
		Found:    res.Found,
		Deleted:  res.Deleted,
		DryRun:   res.DryRun,
		Duration: res.Duration.Round(time.Millisecond).String(),
		Error:    errMsg,
	}

	notifyCtx, cancel := notificationContext(ctx)
	defer cancel()

	if err := dispatcher.Notify(notifyCtx, event); err != nil && verbose {
		fmt.Printf("notification failed: bucket=%s status=%s err=%v\n", res.Bucket, status, err)
	}
}

func notificationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), notificationTimeout)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
}
