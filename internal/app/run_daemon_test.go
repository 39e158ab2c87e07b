package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dev-tams/b2prune/internal/config"
)

func daemonConfig(schedule string) *config.Config {
	return &config.Config{
		Version: 1,
		Backends: []config.BackendConfig{
			{Name: "b2-main", Type: "b2cli"},
		},
		Buckets: []config.BucketConfig{
			{Name: "photos", Backend: "b2-main", Schedule: schedule},
		},
	}
}

func TestDaemonJobSkipsWhileRunInFlight(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once

	job := &daemonJob{
		name: "photos",
		prune: func(_ context.Context) {
			startedOnce.Do(func() { close(started) })
			<-block
		},
	}

	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- job.trigger(context.Background(), false)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first trigger never started")
	}

	// second trigger lands while the first is still running
	if job.trigger(context.Background(), false) {
		t.Fatal("expected overlapping trigger to be skipped")
	}

	close(block)
	select {
	case ran := <-firstDone:
		if !ran {
			t.Fatal("expected first trigger to run")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first trigger never finished")
	}

	// after the first run finishes the guard must release
	if !job.trigger(context.Background(), false) {
		t.Fatal("expected trigger to run again once the previous run finished")
	}
}

func TestDaemonJobRunsSequentialTriggers(t *testing.T) {
	runs := 0
	job := &daemonJob{
		name:  "photos",
		prune: func(_ context.Context) { runs++ },
	}

	for i := 0; i < 3; i++ {
		if !job.trigger(context.Background(), false) {
			t.Fatalf("trigger %d unexpectedly skipped", i)
		}
	}
	if runs != 3 {
		t.Fatalf("expected 3 runs, got %d", runs)
	}
}

func TestRunDaemonRejectsConfigWithoutSchedules(t *testing.T) {
	err := RunDaemon(context.Background(), daemonConfig(""), false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no buckets with a non-empty schedule") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunDaemonStopsCleanlyOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// schedule far enough out that nothing triggers before shutdown
	if err := RunDaemon(ctx, daemonConfig("0 3 * * *"), false); err != nil {
		t.Fatalf("RunDaemon: %v", err)
	}
}
