package prune

import (
	"reflect"
	"testing"

	"github.com/dev-tams/b2prune/internal/store/version"
)

func TestSelectCandidatesKeepsNewestPerFile(t *testing.T) {
	records := []version.Record{
		{FileName: "a.txt", FileID: "v1", UploadTimestamp: 100},
		{FileName: "a.txt", FileID: "v2", UploadTimestamp: 300},
		{FileName: "a.txt", FileID: "v3", UploadTimestamp: 200},
	}

	got := SelectCandidates(records, 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	for _, c := range got {
		if c.FileID == "v2" {
			t.Fatalf("newest version v2 must never be a candidate")
		}
	}
	if got[0].FileID != "v3" || got[1].FileID != "v1" {
		t.Fatalf("expected candidates [v3 v1] (newest-first order), got [%s %s]", got[0].FileID, got[1].FileID)
	}
}

func TestSelectCandidatesSingleVersionPerFile(t *testing.T) {
	records := []version.Record{
		{FileName: "a.txt", FileID: "v1", UploadTimestamp: 100},
		{FileName: "b.txt", FileID: "v2", UploadTimestamp: 200},
	}

	if got := SelectCandidates(records, 1); len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestSelectCandidatesEmptyInput(t *testing.T) {
	if got := SelectCandidates(nil, 1); len(got) != 0 {
		t.Fatalf("expected no candidates for empty input, got %d", len(got))
	}
}

func TestSelectCandidatesCountMatchesDistinctNames(t *testing.T) {
	records := []version.Record{
		{FileName: "a", FileID: "a1", UploadTimestamp: 1},
		{FileName: "a", FileID: "a2", UploadTimestamp: 2},
		{FileName: "a", FileID: "a3", UploadTimestamp: 3},
		{FileName: "b", FileID: "b1", UploadTimestamp: 1},
		{FileName: "b", FileID: "b2", UploadTimestamp: 2},
		{FileName: "c", FileID: "c1", UploadTimestamp: 1},
	}

	got := SelectCandidates(records, 1)
	distinct := len(GroupByFileName(records))
	if want := len(records) - distinct; len(got) != want {
		t.Fatalf("expected %d candidates (records minus distinct names), got %d", want, len(got))
	}
}

func TestSelectCandidatesStableOnEqualTimestamps(t *testing.T) {
	records := []version.Record{
		{FileName: "a", FileID: "first", UploadTimestamp: 100},
		{FileName: "a", FileID: "second", UploadTimestamp: 100},
	}

	got := SelectCandidates(records, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	// stable sort: the earlier-listed record wins the tie and is kept
	if got[0].FileID != "second" {
		t.Fatalf("expected later-listed record to be the candidate, got %s", got[0].FileID)
	}
}

func TestSelectCandidatesIdempotent(t *testing.T) {
	records := []version.Record{
		{FileName: "a", FileID: "a1", UploadTimestamp: 3},
		{FileName: "a", FileID: "a2", UploadTimestamp: 1},
		{FileName: "b", FileID: "b1", UploadTimestamp: 2},
		{FileName: "a", FileID: "a3", UploadTimestamp: 2},
	}

	first := SelectCandidates(records, 1)
	second := SelectCandidates(records, 1)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("selection not idempotent: %v vs %v", first, second)
	}
}

func TestSelectCandidatesKeepN(t *testing.T) {
	records := []version.Record{
		{FileName: "a", FileID: "a1", UploadTimestamp: 1},
		{FileName: "a", FileID: "a2", UploadTimestamp: 2},
		{FileName: "a", FileID: "a3", UploadTimestamp: 3},
		{FileName: "a", FileID: "a4", UploadTimestamp: 4},
	}

	got := SelectCandidates(records, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates with keep=2, got %d", len(got))
	}
	if got[0].FileID != "a2" || got[1].FileID != "a1" {
		t.Fatalf("expected [a2 a1], got [%s %s]", got[0].FileID, got[1].FileID)
	}
}

func TestSelectCandidatesTreatsKeepBelowOneAsOne(t *testing.T) {
	records := []version.Record{
		{FileName: "a", FileID: "a1", UploadTimestamp: 1},
		{FileName: "a", FileID: "a2", UploadTimestamp: 2},
	}

	if got := SelectCandidates(records, 0); len(got) != 1 {
		t.Fatalf("keep=0 must still retain the newest version, got %d candidates", len(got))
	}
}

func TestGroupByFileNameIsCaseSensitive(t *testing.T) {
	records := []version.Record{
		{FileName: "A.txt", FileID: "v1", UploadTimestamp: 1},
		{FileName: "a.txt", FileID: "v2", UploadTimestamp: 2},
	}

	groups := GroupByFileName(records)
	if len(groups) != 2 {
		t.Fatalf("expected exact-match grouping to keep 2 groups, got %d", len(groups))
	}
}
