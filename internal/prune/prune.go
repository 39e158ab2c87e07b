package prune

import (
	"sort"

	"github.com/dev-tams/b2prune/internal/store/version"
)

// GroupByFileName partitions records by exact file name. No normalization,
// no case folding: "A.txt" and "a.txt" are different files.
func GroupByFileName(records []version.Record) map[string][]version.Record {
	groups := make(map[string][]version.Record)
	for _, r := range records {
		groups[r.FileName] = append(groups[r.FileName], r)
	}
	return groups
}

// SelectCandidates returns every version except the newest keep per file.
// Each group is stable-sorted by upload timestamp descending, so versions
// with equal timestamps keep their listing order and the earlier-listed one
// wins the tie. keep values below 1 are treated as 1; the newest version of
// a file is never a candidate. Groups are visited in file-name order so the
// candidate sequence is deterministic across runs.
func SelectCandidates(records []version.Record, keep int) []version.Record {
	if keep < 1 {
		keep = 1
	}

	groups := GroupByFileName(records)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []version.Record
	for _, name := range names {
		g := groups[name]
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].UploadTimestamp > g[j].UploadTimestamp
		})
		if len(g) > keep {
			candidates = append(candidates, g[keep:]...)
		}
	}
	return candidates
}
