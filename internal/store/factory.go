package store

import (
	"context"
	"fmt"

	"github.com/dev-tams/b2prune/internal/config"
	"github.com/dev-tams/b2prune/internal/store/b2cli"
	s3store "github.com/dev-tams/b2prune/internal/store/s3"
)

// FromConfig builds the Store for one bucket. With no config file the tool
// falls back to the b2 CLI on PATH, which is all the common case needs.
// backendName selects an entry from the config's backends list; empty means
// the first one.
func FromConfig(ctx context.Context, cfg *config.Config, backendName, bucket string) (Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	if cfg == nil || len(cfg.Backends) == 0 {
		switch backendName {
		case "", "b2", "b2cli":
			return b2cli.New("b2cli", "b2", bucket), nil
		default:
			return nil, fmt.Errorf("backend %q requires a config file", backendName)
		}
	}

	name := backendName
	if name == "" {
		name = cfg.Backends[0].Name
	}

	for _, b := range cfg.Backends {
		if b.Name != name {
			continue
		}
		switch b.Type {
		case "b2cli":
			return b2cli.New(b.Name, b.Config.Binary, bucket), nil
		case "s3":
			s, err := s3store.New(ctx, s3store.Options{
				Name:      b.Name,
				Bucket:    bucket,
				Region:    b.Config.Region,
				Endpoint:  b.Config.Endpoint,
				AccessKey: b.Config.AccessKey,
				SecretKey: b.Config.SecretKey,
			})
			if err != nil {
				return nil, fmt.Errorf("backend %s: %w", b.Name, err)
			}
			return s, nil
		default:
			return nil, fmt.Errorf("backend %s: unknown type %q", b.Name, b.Type)
		}
	}

	return nil, fmt.Errorf("backend %q not found in config", name)
}
