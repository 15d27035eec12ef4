package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/absfs/precompress"
)

type options struct {
	codecs            []string
	levels            map[string]int
	concurrency       int
	maxFileSize       int64
	minSize           int64
	skip              []string
	includeCompressed bool
	verify            bool
	timeout           time.Duration
	configPath        string
	json              bool
	verbose           bool
	quiet             bool
}

func newRootCommand() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

func newCommand() (*cobra.Command, *options) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "precompress [flags] <dir>",
		Short: "Write gzip, zstd, deflate and brotli siblings for every file in a directory",
		Long: `precompress walks <dir> recursively and writes, next to every regular file,
one compressed copy per codec (file.gz, file.zst, file.deflate, file.br).

Exit codes: 0 all items succeeded, 1 some items failed, 2 invalid
configuration, 3 cancelled.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.codecs, "codecs", nil, "codecs to produce (gzip, zstd, deflate, brotli); default all")
	f.StringToIntVar(&opts.levels, "level", nil, "per-codec level, e.g. gzip=9,brotli=11")
	f.IntVarP(&opts.concurrency, "concurrency", "j", 0, "number of concurrent workers (default GOMAXPROCS)")
	f.Int64Var(&opts.maxFileSize, "max-file-size", 0, "fail files larger than this many bytes (default 256MiB)")
	f.Int64Var(&opts.minSize, "min-size", 0, "skip files smaller than this many bytes")
	f.StringArrayVar(&opts.skip, "skip", nil, "regexp of relative paths to skip (repeatable)")
	f.BoolVar(&opts.includeCompressed, "include-compressed", false, "also compress files that already have a compression suffix")
	f.BoolVar(&opts.verify, "verify", false, "decode every output and compare it with its input")
	f.DurationVar(&opts.timeout, "timeout", 0, "abort the run after this long")
	f.StringVar(&opts.configPath, "config", "", "TOML config file")
	f.BoolVar(&opts.json, "json", false, "print the full report as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "no progress output")

	return cmd, opts
}

// buildConfig merges defaults, the config file and explicitly set flags
func buildConfig(cmd *cobra.Command, opts *options, dir string, fsys afero.Fs) (*precompress.Config, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", precompress.ErrInvalidConfiguration, err)
	}
	cfg := precompress.DefaultConfig(root)
	cfg.Fs = fsys

	if opts.configPath != "" {
		cf, err := precompress.LoadConfigFile(fsys, opts.configPath)
		if err != nil {
			return nil, err
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("codecs") {
		cfg.Codecs = cfg.Codecs[:0]
		for _, name := range opts.codecs {
			codec, err := precompress.ParseCodec(name)
			if err != nil {
				return nil, err
			}
			cfg.Codecs = append(cfg.Codecs, codec)
		}
	}
	if f.Changed("level") {
		if cfg.Levels == nil {
			cfg.Levels = make(map[precompress.Codec]int, len(opts.levels))
		}
		for name, lvl := range opts.levels {
			codec, err := precompress.ParseCodec(name)
			if err != nil {
				return nil, err
			}
			cfg.Levels[codec] = lvl
		}
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if f.Changed("max-file-size") {
		cfg.MaxFileSize = opts.maxFileSize
	}
	if f.Changed("min-size") {
		cfg.MinSize = opts.minSize
	}
	cfg.SkipPatterns = append(cfg.SkipPatterns, opts.skip...)
	if f.Changed("include-compressed") {
		cfg.IncludeCompressed = opts.includeCompressed
	}
	if f.Changed("verify") {
		cfg.Verify = opts.verify
	}
	if f.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	return cfg, nil
}

func newLogger(opts *options) (*zap.Logger, error) {
	switch {
	case opts.verbose:
		return zap.NewDevelopment()
	case opts.quiet:
		return zap.NewNop(), nil
	default:
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		return zc.Build()
	}
}

func runCompress(cmd *cobra.Command, opts *options, dir string) error {
	cfg, err := buildConfig(cmd, opts, dir, afero.NewOsFs())
	if err != nil {
		return &exitError{code: precompress.ExitInvalidConfig, err: err}
	}

	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	cfg.Logger = logger

	var bar *progress
	if !opts.quiet && !opts.json {
		bar = newProgress(cmd.ErrOrStderr())
		cfg.OnResult = bar.update
	}

	report, err := precompress.Run(cmd.Context(), cfg)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return &exitError{code: precompress.ExitInvalidConfig, err: err}
	}

	if err := printReport(cmd.OutOrStdout(), report, opts.json); err != nil {
		return err
	}
	if code := report.ExitCode(); code != precompress.ExitOK {
		return &exitError{code: code, err: report.Err()}
	}
	return nil
}

func printReport(w io.Writer, report *precompress.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if _, err := fmt.Fprintln(w, report.Summary()); err != nil {
		return err
	}
	for _, f := range report.Failures {
		if _, err := fmt.Fprintf(w, "  %s %s (%s): %s\n", f.Kind, f.Item.Path, f.Item.Codec, f.Message); err != nil {
			return err
		}
	}
	return nil
}
