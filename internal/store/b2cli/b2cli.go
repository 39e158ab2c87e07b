package b2cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/dev-tams/b2prune/internal/store/version"
)

// Store runs the Backblaze b2 command-line tool for every operation. The
// CLI must already be authorized (b2 authorize-account).
type Store struct {
	name   string
	binary string
	bucket string
}

// seams for tests
var (
	runCommand   = runExec
	execLookPath = exec.LookPath
)

func New(name, binary, bucket string) *Store {
	if binary == "" {
		binary = "b2"
	}
	return &Store{name: name, binary: binary, bucket: bucket}
}

func (s *Store) Name() string { return s.name }

// ListVersions lists every version of every file in the bucket, historical
// versions included.
func (s *Store) ListVersions(ctx context.Context) ([]version.Record, error) {
	stdout, stderr, err := runCommand(
		ctx,
		s.binary,
		"ls", "--json", "--recursive", "--versions",
		"b2://"+s.bucket,
	)
	if err != nil {
		return nil, commandError(s.binary+" ls", stderr, err)
	}
	return parseListing(stdout)
}

// DeleteVersion deletes exactly one version of one file.
func (s *Store) DeleteVersion(ctx context.Context, fileName, fileID string) error {
	_, stderr, err := runCommand(ctx, s.binary, "delete-file-version", fileName, fileID)
	if err != nil {
		return commandError(s.binary+" delete-file-version", stderr, err)
	}
	return nil
}

// Check verifies the binary exists and the CLI has stored credentials.
func (s *Store) Check(ctx context.Context) error {
	if _, err := execLookPath(s.binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", s.binary, err)
	}
	_, stderr, err := runCommand(ctx, s.binary, "get-account-info")
	if err != nil {
		return commandError(s.binary+" get-account-info", stderr, err)
	}
	return nil
}

// parseListing decodes the ls output. Recent CLI versions emit one JSON
// record per line; older ones emit a single JSON array, and a bucket with
// one version may come back as a single bare object. All three are accepted.
func parseListing(data []byte) ([]version.Record, error) {
	var records []version.Record

	lineMode := true
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var r version.Record
		if err := json.Unmarshal(line, &r); err != nil {
			lineMode = false
			break
		}
		records = append(records, r)
	}
	if lineMode {
		return records, nil
	}

	records = nil
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single version.Record
	if err := json.Unmarshal(data, &single); err == nil {
		return []version.Record{single}, nil
	}

	return nil, fmt.Errorf("listing output is not JSON lines, a JSON array, or a JSON object")
}

func commandError(cmdline string, stderr []byte, err error) error {
	msg := bytes.TrimSpace(stderr)
	if len(msg) > 0 {
		return fmt.Errorf("%s: %w: %s", cmdline, err, msg)
	}
	return fmt.Errorf("%s: %w", cmdline, err)
}

func runExec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
