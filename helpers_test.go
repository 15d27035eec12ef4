package precompress

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestPresetConfigs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/site", 0o755); err != nil {
		t.Fatal(err)
	}

	presets := []struct {
		name   string
		cfg    *Config
		codecs int
	}{
		{"Default", DefaultConfig("/site"), 4},
		{"Fastest", FastestConfig("/site"), 4},
		{"BestCompression", BestCompressionConfig("/site"), 4},
		{"Compatible", CompatibleConfig("/site"), 1},
	}

	for _, tt := range presets {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Fs = fsys
			c := tt.cfg.clone()
			if _, err := c.validate(); err != nil {
				t.Fatalf("Preset does not validate: %v", err)
			}
			if len(c.Codecs) != tt.codecs {
				t.Errorf("Expected %d codecs, got %d", tt.codecs, len(c.Codecs))
			}
		})
	}
}

func TestBestCompressionLevels(t *testing.T) {
	cfg := BestCompressionConfig("/site")
	for _, codec := range AllCodecs() {
		_, want := codec.LevelRange()
		if codec == CodecZstd {
			// zstd tops out at 19
			want = 19
		}
		if got := cfg.Level(codec); got != want {
			t.Errorf("%s: expected level %d, got %d", codec, want, got)
		}
	}

	skip, err := compileSkip(cfg.SkipPatterns)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"img/logo.png", "fonts/a.woff2", "video.mp4", "dist/site.zip", "logs/old.xz"} {
		if !skip.MatchString(name) {
			t.Errorf("%s should be skipped", name)
		}
	}
	if skip.MatchString("index.html") {
		t.Error("index.html should not be skipped")
	}
}

func TestConfigLevelDefaults(t *testing.T) {
	cfg := DefaultConfig("/site")
	cfg.Levels = map[Codec]int{CodecGzip: 9}

	if got := cfg.Level(CodecGzip); got != 9 {
		t.Errorf("Expected gzip level 9, got %d", got)
	}
	if got := cfg.Level(CodecBrotli); got != CodecBrotli.DefaultLevel() {
		t.Errorf("Expected brotli default level, got %d", got)
	}
}

func TestConfigCloneNormalizes(t *testing.T) {
	cfg := &Config{
		Root:   "/site",
		Codecs: []Codec{"GZIP", "br", CodecGzip, " zstandard "},
		Levels: map[Codec]int{"gz": 4},
	}
	c := cfg.clone()

	want := []Codec{CodecGzip, CodecBrotli, CodecZstd}
	if len(c.Codecs) != len(want) {
		t.Fatalf("Expected codecs %v, got %v", want, c.Codecs)
	}
	for i := range want {
		if c.Codecs[i] != want[i] {
			t.Errorf("Codec %d: expected %s, got %s", i, want[i], c.Codecs[i])
		}
	}
	if c.Levels[CodecGzip] != 4 {
		t.Errorf("Expected alias level to map to gzip, got %v", c.Levels)
	}
	if c.Concurrency < 1 || c.MaxFileSize != DefaultMaxFileSize || c.Fs == nil || c.Logger == nil {
		t.Error("clone did not fill in defaults")
	}

	// the caller's config is untouched
	c.Levels[CodecGzip] = 1
	if cfg.Levels["gz"] != 4 {
		t.Error("clone shares the Levels map with the caller")
	}
}

func TestConfigValidation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/site", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/file", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"relative root", func(c *Config) { c.Root = "site" }, ErrInvalidConfiguration},
		{"empty root", func(c *Config) { c.Root = "" }, ErrInvalidConfiguration},
		{"missing root", func(c *Config) { c.Root = "/missing" }, ErrInvalidRoot},
		{"file root", func(c *Config) { c.Root = "/file" }, ErrInvalidRoot},
		{"no codecs", func(c *Config) { c.Codecs = []Codec{} }, ErrInvalidConfiguration},
		{"unknown codec", func(c *Config) { c.Codecs = []Codec{"lz4"} }, ErrUnsupportedCodec},
		{"gzip level", func(c *Config) { c.Levels = map[Codec]int{CodecGzip: 10} }, ErrInvalidQuality},
		{"brotli level", func(c *Config) { c.Levels = map[Codec]int{CodecBrotli: 12} }, ErrInvalidQuality},
		{"concurrency", func(c *Config) { c.Concurrency = -1 }, ErrInvalidConfiguration},
		{"max size", func(c *Config) { c.MaxFileSize = -1 }, ErrInvalidConfiguration},
		{"min size", func(c *Config) { c.MinSize = -1 }, ErrInvalidConfiguration},
		{"timeout", func(c *Config) { c.Timeout = -1 }, ErrInvalidConfiguration},
		{"skip pattern", func(c *Config) { c.SkipPatterns = []string{"("} }, ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/site")
			cfg.Fs = fsys
			tt.modify(cfg)

			_, err := cfg.clone().validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetCompressionRatio(t *testing.T) {
	tests := []struct {
		name            string
		original        int64
		compressed      int64
		expectedRatio   float64
		expectedPercent float64
	}{
		{"50% compression", 1000, 500, 0.5, 50.0},
		{"75% compression", 1000, 250, 0.25, 75.0},
		{"No compression", 1000, 1000, 1.0, 0.0},
		{"Zero original", 0, 500, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := GetCompressionRatio(tt.original, tt.compressed)
			if ratio != tt.expectedRatio {
				t.Errorf("Expected ratio %.2f, got %.2f", tt.expectedRatio, ratio)
			}

			percent := GetCompressionPercentage(tt.original, tt.compressed)
			if percent != tt.expectedPercent {
				t.Errorf("Expected percentage %.2f, got %.2f", tt.expectedPercent, percent)
			}
		})
	}
}
