package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	req := Request{
		VideoID:     "r1nicOVtvkQ",
		Start:       130,
		End:         140,
		AudioFormat: "vorbis",
		Quality:     5,
		Output:      "train/91139.ogg",
	}

	got := buildArgs(req)
	want := []string{
		"--quiet",
		"--no-warnings",
		"--extract-audio",
		"--audio-format", "vorbis",
		"--audio-quality", "5",
		"--output", "train/91139.ogg",
		"--postprocessor-args", "-ss 130 -to 140",
		"https://www.youtube.com/watch?v=r1nicOVtvkQ",
	}

	if !slices.Equal(got, want) {
		t.Errorf("buildArgs() = %v, want %v", got, want)
	}
}

func TestBuildArgsFractionalWindow(t *testing.T) {
	t.Parallel()

	args := buildArgs(Request{Start: 20.5, End: 30.5})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 20.5 -to 30.5") {
		t.Errorf("buildArgs() window args = %q, want -ss 20.5 -to 30.5", joined)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotArgs []string
	c := NewClient("/usr/bin/yt-dlp", WithRun(func(_ context.Context, path string, args []string) (string, error) {
		gotPath = path
		gotArgs = args
		return "", nil
	}))

	err := c.Extract(context.Background(), Request{VideoID: "abc", AudioFormat: "mp3", Output: "x.mp3"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if gotPath != "/usr/bin/yt-dlp" {
		t.Errorf("run path = %q", gotPath)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("run args = %v, want watch URL last", gotArgs)
	}
}

func TestExtractFailure(t *testing.T) {
	t.Parallel()

	c := NewClient("yt-dlp", WithRun(func(_ context.Context, _ string, _ []string) (string, error) {
		return "WARNING: something\nERROR: Video unavailable\n", errors.New("exit status 1")
	}))

	err := c.Extract(context.Background(), Request{VideoID: "gone"})
	if !errors.Is(err, ErrExtractFailed) {
		t.Fatalf("Extract() error = %v, want ErrExtractFailed", err)
	}
	if !strings.Contains(err.Error(), "ERROR: Video unavailable") {
		t.Errorf("Extract() error = %q, want last output line attached", err)
	}
	if !strings.Contains(err.Error(), "gone") {
		t.Errorf("Extract() error = %q, want video id attached", err)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	c := NewClient("yt-dlp", WithRun(func(_ context.Context, _ string, args []string) (string, error) {
		if !slices.Equal(args, []string{"--version"}) {
			t.Errorf("Version() args = %v", args)
		}
		return "2025.08.11\n", nil
	}))

	if got := c.Version(context.Background()); got != "2025.08.11" {
		t.Errorf("Version() = %q, want %q", got, "2025.08.11")
	}
}

func TestResolveEnvOverride(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0700); err != nil { // #nosec G306
		t.Fatal(err)
	}
	t.Setenv(EnvBinPath, bin)

	got, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != bin {
		t.Errorf("Resolve() = %q, want %q", got, bin)
	}
}

func TestResolveEnvOverrideMissingFile(t *testing.T) {
	t.Setenv(EnvBinPath, filepath.Join(t.TempDir(), "nope"))

	_, err := Resolve()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}
