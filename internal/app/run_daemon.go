package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/dev-tams/b2prune/internal/config"
	"github.com/dev-tams/b2prune/internal/notify"
	"github.com/dev-tams/b2prune/internal/store"
)

// daemonJob guards one bucket's scheduled prune so triggers never overlap.
type daemonJob struct {
	name    string
	running atomic.Bool
	prune   func(ctx context.Context)
}

// trigger runs the prune unless the previous run for this bucket is still in
// flight. Reports whether it ran.
func (j *daemonJob) trigger(ctx context.Context, verbose bool) bool {
	if !j.running.CompareAndSwap(false, true) {
		if verbose {
			fmt.Printf("daemon: bucket=%s skipped (previous run still in flight)\n", j.name)
		}
		return false
	}
	defer j.running.Store(false)

	j.prune(ctx)
	return true
}

// RunDaemon schedules a prune for every configured bucket with a non-empty
// cron schedule and blocks until ctx is canceled. Scheduled runs never
// prompt; a failed run is reported and logged but does not stop the daemon.
func RunDaemon(ctx context.Context, cfg *config.Config, verbose bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dispatcher, err := notify.NewDispatcher(cfg.Notifications)
	if err != nil {
		return err
	}

	c := cron.New()
	jobs := 0

	for _, bk := range cfg.Buckets {
		spec := strings.TrimSpace(bk.Schedule)
		if spec == "" {
			if verbose {
				fmt.Printf("daemon: bucket=%s skipped (empty schedule)\n", bk.Name)
			}
			continue
		}

		bucket := bk
		job := &daemonJob{
			name: bucket.Name,
			prune: func(ctx context.Context) {
				runScheduledPrune(ctx, cfg, dispatcher, bucket, verbose)
			},
		}
		_, err := c.AddFunc(spec, func() {
			job.trigger(ctx, verbose)
		})
		if err != nil {
			return fmt.Errorf("bucket %s: invalid schedule %q: %w", bk.Name, spec, err)
		}
		jobs++
	}

	if jobs == 0 {
		return fmt.Errorf("daemon: no buckets with a non-empty schedule")
	}

	if verbose {
		fmt.Printf("daemon: started with %d scheduled bucket(s)\n", jobs)
	}

	c.Start()
	<-ctx.Done()

	// Stop accepting triggers, then wait for in-flight runs.
	<-c.Stop().Done()

	if verbose {
		fmt.Println("daemon: shutdown requested")
	}
	return nil
}

func runScheduledPrune(ctx context.Context, cfg *config.Config, dispatcher *notify.Dispatcher, bk config.BucketConfig, verbose bool) {
	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if cfg.Daemon.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.Daemon.RunTimeout)
	}
	defer cancel()

	st, err := store.FromConfig(runCtx, cfg, bk.Backend, bk.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daemon: bucket=%s backend setup failed: %v\n", bk.Name, err)
		NotifyResult(ctx, dispatcher, PruneResult{Bucket: bk.Name, DryRun: bk.DryRun}, err, verbose)
		return
	}

	res, err := RunPrune(runCtx, st, PruneOptions{
		Bucket:  bk.Name,
		DryRun:  bk.DryRun,
		Keep:    bk.KeepLatest,
		Verbose: verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "daemon: bucket=%s prune failed: %v\n", bk.Name, err)
	}
	NotifyResult(ctx, dispatcher, res, err, verbose)
}
