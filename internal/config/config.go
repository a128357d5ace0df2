// Package config resolves the run configuration from flags and environment
// variables. The resulting Config is read-only for the rest of the run.
package config

import (
	"errors"
	"os"
	"time"
)

const (
	// DefaultOutputPath matches the path the published card is served from.
	DefaultOutputPath = "docs/stats.svg"
	// DefaultTimeout bounds the whole run; resources still in flight when
	// it expires degrade to empty rather than hanging the run.
	DefaultTimeout = 2 * time.Minute
	// DefaultCommitSample is the number of repositories sampled for the
	// commit estimate.
	DefaultCommitSample = 10
)

// Config holds everything a single run needs.
type Config struct {
	Handle       string
	Token        string
	OutputPath   string
	Timeout      time.Duration
	CommitSample int
}

// Resolve merges explicit values with environment fallbacks and validates
// the result. Empty handle falls back to GITHUB_USERNAME, then
// GITHUB_REPOSITORY_OWNER (set by CI); empty token falls back to
// GITHUB_TOKEN and may legitimately stay empty.
func Resolve(handle, token, outputPath string, timeout time.Duration, commitSample int) (Config, error) {
	if handle == "" {
		handle = os.Getenv("GITHUB_USERNAME")
	}
	if handle == "" {
		handle = os.Getenv("GITHUB_REPOSITORY_OWNER")
	}
	if handle == "" {
		return Config{}, errors.New("no account handle: pass --user or set GITHUB_USERNAME")
	}
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if outputPath == "" {
		outputPath = os.Getenv("OUTPUT_PATH")
	}
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if commitSample <= 0 {
		commitSample = DefaultCommitSample
	}
	return Config{
		Handle:       handle,
		Token:        token,
		OutputPath:   outputPath,
		Timeout:      timeout,
		CommitSample: commitSample,
	}, nil
}
