package precompress

import (
	"errors"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Codec identifies a compression format
type Codec string

const (
	CodecGzip    Codec = "gzip"
	CodecZstd    Codec = "zstd"
	CodecDeflate Codec = "deflate"
	CodecBrotli  Codec = "brotli"
)

// DefaultMaxFileSize bounds how much of a single file a worker holds in memory.
const DefaultMaxFileSize int64 = 256 << 20

// Config holds the settings of a single run
type Config struct {
	// Root is the absolute path of the directory to compress
	Root string

	// Codecs to produce for every file (default: all four)
	Codecs []Codec

	// Per-codec compression level; codecs without an entry use their default
	// gzip: 1-9 (6 default)
	// zstd: 1-22 (3 default)
	// deflate: 1-9 (6 default)
	// brotli: 0-11 (6 default)
	Levels map[Codec]int

	// Number of concurrent workers (default: GOMAXPROCS)
	Concurrency int

	// Files larger than this fail with ErrFileTooLarge (default: 256MiB)
	MaxFileSize int64

	// Skip patterns - regex patterns matched against the slash separated path
	// relative to Root. Examples: []string{`\.jpg$`, `^vendor/`}
	SkipPatterns []string

	// Minimum file size to compress (skip smaller files)
	MinSize int64

	// Also compress files that already carry a compression suffix
	// (.gz, .zst, .br, ...). Off by default so reruns stay idempotent.
	IncludeCompressed bool

	// Decode every output and compare it with the input before renaming it
	// into place
	Verify bool

	// Deadline for the whole run; zero means none
	Timeout time.Duration

	// Filesystem to operate on (default: the OS filesystem)
	Fs afero.Fs

	// Logger for run events (default: no-op)
	Logger *zap.Logger

	// OnResult is called once per completed work item, from a single
	// goroutine, in completion order
	OnResult func(WorkResult)
}

// DefaultConfig returns a config with sensible defaults for root
func DefaultConfig(root string) *Config {
	return &Config{
		Root:        root,
		Codecs:      AllCodecs(),
		Levels:      nil,
		Concurrency: runtime.GOMAXPROCS(0),
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Level returns the configured level for codec, or its default
func (c *Config) Level(codec Codec) int {
	if lvl, ok := c.Levels[codec]; ok {
		return lvl
	}
	return codec.DefaultLevel()
}

// clone returns a deep copy with defaults filled in. Runs only ever see the
// clone, so callers may reuse or mutate their Config afterwards.
func (c *Config) clone() *Config {
	out := *c

	out.Codecs = make([]Codec, 0, len(c.Codecs))
	seen := make(map[Codec]bool, len(c.Codecs))
	for _, codec := range c.Codecs {
		codec = Codec(strings.ToLower(strings.TrimSpace(string(codec))))
		if parsed, err := ParseCodec(string(codec)); err == nil {
			codec = parsed
		}
		if seen[codec] {
			continue
		}
		seen[codec] = true
		out.Codecs = append(out.Codecs, codec)
	}

	out.Levels = make(map[Codec]int, len(c.Levels))
	for codec, lvl := range c.Levels {
		if parsed, err := ParseCodec(string(codec)); err == nil {
			codec = parsed
		}
		out.Levels[codec] = lvl
	}

	out.SkipPatterns = append([]string(nil), c.SkipPatterns...)

	if out.Concurrency == 0 {
		out.Concurrency = runtime.GOMAXPROCS(0)
	}
	if out.MaxFileSize == 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.Fs == nil {
		out.Fs = afero.NewOsFs()
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return &out
}

// compileSkip joins the skip patterns into one expression
func compileSkip(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return regexp.Compile("(?:" + strings.Join(patterns, ")|(?:") + ")")
}

var (
	ErrInvalidConfiguration = errors.New("precompress: invalid configuration")
	ErrInvalidRoot          = errors.New("precompress: invalid root directory")
	ErrUnsupportedCodec     = errors.New("precompress: unsupported codec")
	ErrInvalidQuality       = errors.New("precompress: invalid compression level")
	ErrFileTooLarge         = errors.New("precompress: file too large")
	ErrRead                 = errors.New("precompress: read failed")
	ErrTransform            = errors.New("precompress: transform failed")
	ErrWrite                = errors.New("precompress: write failed")
	ErrCancelled            = errors.New("precompress: run cancelled")
)
