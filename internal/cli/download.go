package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/clip"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/config"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/pipeline"
)

// DefaultDataRoot is used when neither the flag, the config file, nor the
// environment names a data root.
const DefaultDataRoot = "audiocaps"

// DownloadCmd creates the download command.
func DownloadCmd(env *Env) *cobra.Command {
	var (
		root     string
		workers  int
		format   string
		quality  int
		baseURL  string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download and validate the AudioCaps audio clips",
		Long: `Download the AudioCaps captioned-audio dataset.

Fetches the train, val and test metadata tables, downloads every clip's
10-second audio segment from YouTube via yt-dlp, then validates each file
with ffprobe. Corrupt or empty files are deleted and their rows removed,
and the filtered per-split CSVs are written under the data root.

The command is resumable: clips already on disk are skipped, and files
deleted as invalid are retried on the next run.`,
		Example: `  audiocaps-download download
  audiocaps-download download --root ~/data/audiocaps -j 8
  audiocaps-download download -f wav -q 0 --progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := downloadOptions{
				root:       root,
				rootSet:    cmd.Flags().Changed("root"),
				workers:    workers,
				workersSet: cmd.Flags().Changed("workers"),
				format:     format,
				quality:    quality,
				baseURL:    baseURL,
				progress:   progress,
			}
			return runDownload(cmd, env, opts)
		},
	}

	cmd.Flags().StringVar(&root, "root", DefaultDataRoot, "data root directory for clips and CSVs")
	cmd.Flags().IntVarP(&workers, "workers", "j", 1, "parallel downloads and checks per split")
	cmd.Flags().StringVarP(&format, "format", "f", string(clip.DefaultFormat), "audio format (vorbis, mp3, m4a, wav)")
	cmd.Flags().IntVarP(&quality, "quality", "q", int(clip.QualityDefault), "audio quality, 0 (best) to 10 (worst)")
	cmd.Flags().StringVar(&baseURL, "base-url", dataset.DefaultBaseURL, "base URL for the metadata CSVs")
	cmd.Flags().BoolVar(&progress, "progress", false, "show per-split progress bars")

	return cmd
}

// downloadOptions carries the flag values plus whether the user set them,
// which decides the flag > config file > default precedence.
type downloadOptions struct {
	root       string
	rootSet    bool
	workers    int
	workersSet bool
	format     string
	quality    int
	baseURL    string
	progress   bool
}

func runDownload(cmd *cobra.Command, env *Env, opts downloadOptions) error {
	// 1. Validate the clip format and clamp quality to the supported range.
	format, err := clip.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	quality := clip.ClampQuality(opts.quality)

	// 2. Load persisted configuration; a broken config file is a warning,
	// not a reason to refuse the run.
	cfg, err := env.Config.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
		cfg = config.Config{}
	}

	// 3. Resolve the data root: flag beats config file beats default.
	root := opts.root
	if !opts.rootSet && cfg.DataRoot != "" {
		root = cfg.DataRoot
	}
	root = config.ExpandPath(root)
	if err := config.EnsureDataRoot(root); err != nil {
		return err
	}

	// 4. Resolve the worker count the same way.
	workers := opts.workers
	if !opts.workersSet && cfg.Workers > 0 {
		workers = cfg.Workers
	}

	// 5. Locate the external tools before any network work.
	downloaderPath, err := env.Resolver.ResolveDownloader()
	if err != nil {
		return err
	}
	proberPath, err := env.Resolver.ResolveProber()
	if err != nil {
		return err
	}

	// 6. Assemble and run the pipeline.
	runner := pipeline.NewRunner(
		pipeline.Config{
			Root:     root,
			Workers:  workers,
			Format:   format,
			Quality:  quality,
			Progress: opts.progress,
		},
		env.Loaders.NewLoader(opts.baseURL),
		env.Fetchers.NewFetcher(downloaderPath, format, quality),
		env.Checkers.NewChecker(proberPath),
		pipeline.WithStderr(env.Stderr),
	)

	_, err = runner.Run(cmd.Context())
	return err
}
