package precompress

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// ConfigFile is the TOML representation of a Config. Zero values leave the
// corresponding Config field untouched when applied.
//
//	codecs = ["gzip", "brotli"]
//	concurrency = 8
//	max_file_size = 104857600
//	min_size = 512
//	skip = ['\.(png|jpg|woff2)$']
//	verify = true
//	timeout = "10m"
//
//	[levels]
//	gzip = 9
//	brotli = 11
type ConfigFile struct {
	Codecs            []string       `toml:"codecs"`
	Levels            map[string]int `toml:"levels"`
	Concurrency       int            `toml:"concurrency"`
	MaxFileSize       int64          `toml:"max_file_size"`
	MinSize           int64          `toml:"min_size"`
	Skip              []string       `toml:"skip"`
	IncludeCompressed bool           `toml:"include_compressed"`
	Verify            bool           `toml:"verify"`
	Timeout           time.Duration  `toml:"timeout"`
}

// LoadConfigFile reads and decodes a TOML config file from fsys. Unknown keys
// are rejected.
func LoadConfigFile(fsys afero.Fs, path string) (*ConfigFile, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	var cf ConfigFile
	md, err := toml.Decode(string(data), &cf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown keys %v", ErrInvalidConfiguration, path, undecoded)
	}
	return &cf, nil
}

// Apply overlays the file's settings onto cfg
func (cf *ConfigFile) Apply(cfg *Config) error {
	if len(cf.Codecs) > 0 {
		codecs := make([]Codec, 0, len(cf.Codecs))
		for _, name := range cf.Codecs {
			codec, err := ParseCodec(name)
			if err != nil {
				return err
			}
			codecs = append(codecs, codec)
		}
		cfg.Codecs = codecs
	}

	if len(cf.Levels) > 0 && cfg.Levels == nil {
		cfg.Levels = make(map[Codec]int, len(cf.Levels))
	}
	for name, lvl := range cf.Levels {
		codec, err := ParseCodec(name)
		if err != nil {
			return err
		}
		cfg.Levels[codec] = lvl
	}

	if cf.Concurrency != 0 {
		cfg.Concurrency = cf.Concurrency
	}
	if cf.MaxFileSize != 0 {
		cfg.MaxFileSize = cf.MaxFileSize
	}
	if cf.MinSize != 0 {
		cfg.MinSize = cf.MinSize
	}
	cfg.SkipPatterns = append(cfg.SkipPatterns, cf.Skip...)
	if cf.IncludeCompressed {
		cfg.IncludeCompressed = true
	}
	if cf.Verify {
		cfg.Verify = true
	}
	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	return nil
}
