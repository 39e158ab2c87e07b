package store

import (
	"context"

	"github.com/dev-tams/b2prune/internal/store/version"
)

// Store is the subset of bucket operations version pruning needs. A Store is
// bound to a single bucket at construction time. Implementations wrap either
// the b2 command-line tool or a direct S3 API client, so the selection logic
// never knows which one it is talking to.
type Store interface {
	Name() string
	ListVersions(ctx context.Context) ([]version.Record, error)
	DeleteVersion(ctx context.Context, fileName, fileID string) error
	// Check verifies the backend is usable without mutating anything.
	Check(ctx context.Context) error
}
