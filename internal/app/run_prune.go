package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dev-tams/b2prune/internal/prune"
	"github.com/dev-tams/b2prune/internal/store"
)

type PruneOptions struct {
	Bucket  string
	DryRun  bool
	Keep    int // newest versions to keep per file; <1 means 1
	Verbose bool
	Out     io.Writer // defaults to os.Stdout
}

type PruneResult struct {
	Bucket     string
	Found      int // versions listed
	Candidates int // versions selected for deletion
	Deleted    int // deletions actually performed (0 in dry-run)
	DryRun     bool
	Duration   time.Duration
}

// RunPrune lists all versions in the store's bucket, keeps the newest per
// file, and deletes the rest. Deletions are strictly sequential; the first
// failed delete aborts the run and no later candidate is attempted.
func RunPrune(ctx context.Context, st store.Store, opts PruneOptions) (res PruneResult, err error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	started := time.Now()
	res = PruneResult{Bucket: opts.Bucket, DryRun: opts.DryRun}
	defer func() { res.Duration = time.Since(started) }()

	if opts.Verbose {
		fmt.Fprintf(out, "prune: bucket=%s backend=%s dry_run=%v keep=%d\n",
			opts.Bucket, st.Name(), opts.DryRun, keepOrDefault(opts.Keep))
	}

	records, err := st.ListVersions(ctx)
	if err != nil {
		return res, fmt.Errorf("list versions: %w", err)
	}
	res.Found = len(records)

	if len(records) == 0 {
		fmt.Fprintf(out, "No files found in bucket: %s\n", opts.Bucket)
		return res, nil
	}

	candidates := prune.SelectCandidates(records, opts.Keep)
	res.Candidates = len(candidates)

	for _, c := range candidates {
		if opts.DryRun {
			fmt.Fprintf(out, "Would delete: %s (Version: %s)\n", c.FileName, c.FileID)
			continue
		}
		fmt.Fprintf(out, "Deleting: %s (Version: %s)\n", c.FileName, c.FileID)
		if err := st.DeleteVersion(ctx, c.FileName, c.FileID); err != nil {
			return res, fmt.Errorf("delete %s (version %s): %w", c.FileName, c.FileID, err)
		}
		res.Deleted++
	}

	if opts.DryRun {
		fmt.Fprintf(out, "\nTotal versions that would be deleted: %d\n", res.Candidates)
	} else {
		fmt.Fprintf(out, "\nTotal versions deleted: %d\n", res.Deleted)
	}

	return res, nil
}

func keepOrDefault(keep int) int {
	if keep < 1 {
		return 1
	}
	return keep
}
