package precompress

import (
	"fmt"
	"path/filepath"
	"regexp"

	"go.uber.org/multierr"
)

// validate checks a normalized config and compiles its skip patterns. All
// problems are reported together; errors.Is matches each of their sentinels.
func (c *Config) validate() (*regexp.Regexp, error) {
	var errs error

	switch {
	case c.Root == "":
		errs = multierr.Append(errs, fmt.Errorf("%w: root is required", ErrInvalidConfiguration))
	case !filepath.IsAbs(c.Root):
		errs = multierr.Append(errs, fmt.Errorf("%w: root %q is not an absolute path", ErrInvalidConfiguration, c.Root))
	default:
		info, err := c.Fs.Stat(c.Root)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrInvalidRoot, err))
		} else if !info.IsDir() {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, c.Root))
		}
	}

	if len(c.Codecs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: no codecs requested", ErrInvalidConfiguration))
	}
	for _, codec := range c.Codecs {
		if !codec.Supported() {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrUnsupportedCodec, string(codec)))
		}
	}
	for codec, lvl := range c.Levels {
		if _, err := lookup(codec, lvl); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.Concurrency < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfiguration, c.Concurrency))
	}
	if c.MaxFileSize < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: negative max file size", ErrInvalidConfiguration))
	}
	if c.MinSize < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: negative min size", ErrInvalidConfiguration))
	}
	if c.Timeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: negative timeout", ErrInvalidConfiguration))
	}

	skip, err := compileSkip(c.SkipPatterns)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: skip patterns: %v", ErrInvalidConfiguration, err))
	}

	return skip, errs
}
