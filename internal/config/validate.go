package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

func (c *Config) Validate() error {
	if c.Version == 0 {
		return fmt.Errorf("config version must be > 0")
	}

	backendNames := map[string]struct{}{}
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backends[%d].name is required", i)
		}
		if _, ok := backendNames[b.Name]; ok {
			return fmt.Errorf("duplicate backend name %q", b.Name)
		}
		backendNames[b.Name] = struct{}{}

		switch b.Type {
		case "b2cli":
			// binary defaults to "b2", nothing else required
		case "s3":
			if b.Config.Region == "" {
				return fmt.Errorf("backend %s: s3 region is required", b.Name)
			}
		case "":
			return fmt.Errorf("backends[%d].type is required (b2cli or s3)", i)
		default:
			return fmt.Errorf("backend %s: unknown type %q", b.Name, b.Type)
		}
	}

	for i, bk := range c.Buckets {
		if bk.Name == "" {
			return fmt.Errorf("buckets[%d].name is required", i)
		}
		if bk.Backend == "" {
			return fmt.Errorf("buckets[%d].backend is required (must match a backend name)", i)
		}
		if _, ok := backendNames[bk.Backend]; !ok {
			return fmt.Errorf("buckets[%d].backend=%q not found in backends list", i, bk.Backend)
		}
		if bk.KeepLatest < 0 {
			return fmt.Errorf("buckets[%d].keep_latest must be >= 0", i)
		}
		if s := strings.TrimSpace(bk.Schedule); s != "" {
			if _, err := cron.ParseStandard(s); err != nil {
				return fmt.Errorf("buckets[%d].schedule %q: %w", i, s, err)
			}
		}
	}

	return nil
}
