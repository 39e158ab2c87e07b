package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dev-tams/b2prune/internal/prune"
	"github.com/dev-tams/b2prune/internal/store"
)

// RunList prints the version inventory of a bucket grouped by file name,
// newest first. Read-only.
func RunList(ctx context.Context, st store.Store, bucket string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	records, err := st.ListVersions(ctx)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No files found in bucket: %s\n", bucket)
		return nil
	}

	groups := prune.GroupByFileName(records)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := groups[name]
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].UploadTimestamp > g[j].UploadTimestamp
		})

		fmt.Fprintf(out, "%s (%d version(s))\n", name, len(g))
		for i, v := range g {
			marker := ""
			if i == 0 {
				marker = "  <- newest, kept by prune"
			}
			fmt.Fprintf(out, "  %s  %s%s\n",
				v.FileID,
				time.UnixMilli(v.UploadTimestamp).UTC().Format(time.RFC3339),
				marker,
			)
		}
	}

	fmt.Fprintf(out, "\nTotal: %d file(s), %d version(s)\n", len(names), len(records))
	return nil
}
