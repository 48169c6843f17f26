// Package ytdlp wraps the external yt-dlp binary used to extract audio clips
// from YouTube sources.
package ytdlp

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

// ErrNotFound indicates the yt-dlp binary is not installed or not on PATH.
var ErrNotFound = errors.New("yt-dlp not found")

// ErrExtractFailed indicates yt-dlp exited abnormally for one clip. This is a
// per-clip error: callers tolerate it and treat the destination as absent.
var ErrExtractFailed = errors.New("yt-dlp extraction failed")

// EnvBinPath is the environment variable overriding the yt-dlp binary path.
const EnvBinPath = "YTDLP_PATH"

// binaryName is the base name looked up on PATH.
const binaryName = "yt-dlp"

// watchURL is the YouTube watch URL template.
const watchURL = "https://www.youtube.com/watch?v=%s"

// Resolve locates the yt-dlp binary. An explicit YTDLP_PATH wins over PATH
// lookup; there is no auto-download, yt-dlp is a hard prerequisite.
func Resolve() (string, error) {
	if custom := os.Getenv(EnvBinPath); custom != "" {
		if _, err := os.Stat(custom); err != nil {
			return "", fmt.Errorf("%w: %s=%s: %v", ErrNotFound, EnvBinPath, custom, err)
		}
		return custom, nil
	}

	path, err := exec.LookPath(binaryName)
	if err != nil {
		return "", fmt.Errorf("%w: install it from https://github.com/yt-dlp/yt-dlp", ErrNotFound)
	}
	return path, nil
}

// Request describes one clip extraction: a time window of a source video,
// transcoded to the requested format and written to Output.
type Request struct {
	VideoID     string
	Start       float64 // seconds
	End         float64 // seconds
	AudioFormat string  // yt-dlp codec name: vorbis, mp3, m4a, wav
	Quality     int     // 0 best .. 10 worst
	Output      string
}

// runFn is the function type for running the binary and capturing combined
// output.
type runFn func(ctx context.Context, path string, args []string) (string, error)

// Client invokes yt-dlp with injectable execution.
type Client struct {
	binPath string
	run     runFn
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRun sets a custom run function (for testing).
func WithRun(fn runFn) ClientOption {
	return func(c *Client) { c.run = fn }
}

// NewClient creates a Client for the resolved binary path.
func NewClient(binPath string, opts ...ClientOption) *Client {
	c := &Client{
		binPath: binPath,
		run:     defaultRun,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract downloads and transcodes the requested window into req.Output.
// Any abnormal exit is reported as ErrExtractFailed with yt-dlp's output
// attached; yt-dlp leaves no destination file in that case.
func (c *Client) Extract(ctx context.Context, req Request) error {
	out, err := c.run(ctx, c.binPath, buildArgs(req))
	if err != nil {
		return fmt.Errorf("%w: %s: %v (output: %s)", ErrExtractFailed, req.VideoID, err, lastLine(out))
	}
	return nil
}

// Version reports the installed yt-dlp version string, empty if it cannot be
// determined. Used for a diagnostic line only, never fatal.
func (c *Client) Version(ctx context.Context) string {
	out, err := c.run(ctx, c.binPath, []string{"--version"})
	if err != nil {
		return ""
	}
	return lastLine(out)
}

// buildArgs assembles the yt-dlp invocation for one clip. The time window is
// applied by the FFmpeg post-processor after the audio-only download, so the
// destination receives exactly [Start, End) seconds.
func buildArgs(req Request) []string {
	return []string{
		"--quiet",
		"--no-warnings",
		"--extract-audio",
		"--audio-format", req.AudioFormat,
		"--audio-quality", strconv.Itoa(req.Quality),
		"--output", req.Output,
		"--postprocessor-args",
		fmt.Sprintf("-ss %s -to %s", formatSeconds(req.Start), formatSeconds(req.End)),
		fmt.Sprintf(watchURL, req.VideoID),
	}
}

// formatSeconds renders an offset for FFmpeg's -ss/-to arguments.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// defaultRun is the production implementation: it runs the binary and
// captures combined stdout+stderr for diagnostics.
func defaultRun(ctx context.Context, path string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// lastLine returns the last non-empty line of output, trimmed. yt-dlp's
// useful error message is almost always the final line.
func lastLine(out string) string {
	last := ""
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			last = trimmed
		}
	}
	return last
}
