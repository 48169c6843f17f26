// Package probe validates downloaded audio clips by decoding their headers
// with ffprobe and checking for a non-zero duration.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotFound indicates the ffprobe binary is not installed or not on PATH.
var ErrNotFound = errors.New("ffprobe not found")

// EnvBinPath is the environment variable overriding the ffprobe binary path.
const EnvBinPath = "FFPROBE_PATH"

// binaryName is the base name looked up on PATH.
const binaryName = "ffprobe"

// Resolve locates the ffprobe binary. An explicit FFPROBE_PATH wins over
// PATH lookup.
func Resolve() (string, error) {
	if custom := os.Getenv(EnvBinPath); custom != "" {
		if _, err := os.Stat(custom); err != nil {
			return "", fmt.Errorf("%w: %s=%s: %v", ErrNotFound, EnvBinPath, custom, err)
		}
		return custom, nil
	}

	path, err := exec.LookPath(binaryName)
	if err != nil {
		return "", fmt.Errorf("%w: it ships with FFmpeg", ErrNotFound)
	}
	return path, nil
}

// Reason classifies why a clip failed validation.
type Reason int

const (
	// ReasonNone means the clip is valid.
	ReasonNone Reason = iota

	// ReasonMissing means no file exists at the path.
	ReasonMissing

	// ReasonDecodeFailed means ffprobe could not decode the file.
	ReasonDecodeFailed

	// ReasonEmpty means the file decoded to zero duration.
	ReasonEmpty
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "valid"
	case ReasonMissing:
		return "missing"
	case ReasonDecodeFailed:
		return "decode failed"
	case ReasonEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Verdict is the typed result of checking one artifact. Check never returns
// an error: every failure mode is a Verdict, and the cause stays inspectable
// through Reason and Cause.
type Verdict struct {
	Valid    bool
	Reason   Reason
	Duration float64 // seconds, when decodable
	Cause    error   // underlying decode error, when ReasonDecodeFailed
}

// runOutputFn is the function type for running ffprobe and capturing stdout.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Checker decides clip validity with injectable execution.
type Checker struct {
	binPath string
	run     runOutputFn
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithRunOutput sets a custom run function (for testing).
func WithRunOutput(fn runOutputFn) CheckerOption {
	return func(c *Checker) { c.run = fn }
}

// NewChecker creates a Checker for the resolved binary path.
func NewChecker(binPath string, opts ...CheckerOption) *Checker {
	c := &Checker{
		binPath: binPath,
		run:     defaultRunOutput,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check decides whether the file at path is a valid audio clip: it must
// exist, decode, and have a non-zero duration.
func (c *Checker) Check(ctx context.Context, path string) Verdict {
	if _, err := os.Stat(path); err != nil {
		return Verdict{Reason: ReasonMissing}
	}

	out, err := c.run(ctx, c.binPath, probeArgs(path))
	if err != nil {
		return Verdict{Reason: ReasonDecodeFailed, Cause: err}
	}

	duration, err := parseDuration(out)
	if err != nil {
		return Verdict{Reason: ReasonDecodeFailed, Cause: err}
	}
	if duration <= 0 {
		return Verdict{Reason: ReasonEmpty, Duration: duration}
	}
	return Verdict{Valid: true, Duration: duration}
}

// probeArgs asks ffprobe for the container duration only.
func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// parseDuration extracts the duration value from ffprobe output. Some
// ffprobe builds print a comma decimal separator under non-C locales.
func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration in ffprobe output")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %v", strings.TrimSpace(out), err)
	}
	return v, nil
}

// defaultRunOutput is the production implementation: ffprobe writes the
// requested entries to stdout.
func defaultRunOutput(ctx context.Context, path string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%v: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
