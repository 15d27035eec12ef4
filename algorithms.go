package precompress

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// codecSpec describes one entry of the codec registry
type codecSpec struct {
	ext          string
	minLevel     int
	maxLevel     int
	defaultLevel int
	compressor   func(w io.Writer, level int) (io.WriteCloser, error)
	decompressor func(r io.Reader) (io.ReadCloser, error)
}

// registry is the closed set of supported codecs. Adding a codec means adding
// a constant, an entry here and a suffix in extensions.go.
var registry = map[Codec]codecSpec{
	CodecGzip: {
		ext:          ".gz",
		minLevel:     gzip.BestSpeed,
		maxLevel:     gzip.BestCompression,
		defaultLevel: 6,
		compressor:   createGzipCompressor,
		decompressor: createGzipDecompressor,
	},
	CodecZstd: {
		ext:          ".zst",
		minLevel:     1,
		maxLevel:     22,
		defaultLevel: 3,
		compressor:   createZstdCompressor,
		decompressor: createZstdDecompressor,
	},
	CodecDeflate: {
		ext:          ".deflate",
		minLevel:     flate.BestSpeed,
		maxLevel:     flate.BestCompression,
		defaultLevel: 6,
		compressor:   createDeflateCompressor,
		decompressor: createDeflateDecompressor,
	},
	CodecBrotli: {
		ext:          ".br",
		minLevel:     brotli.BestSpeed,
		maxLevel:     brotli.BestCompression,
		defaultLevel: 6,
		compressor:   createBrotliCompressor,
		decompressor: createBrotliDecompressor,
	},
}

// codecOrder is the canonical ordering used by AllCodecs and reports
var codecOrder = []Codec{CodecGzip, CodecZstd, CodecDeflate, CodecBrotli}

var codecAliases = map[string]Codec{
	"gzip":      CodecGzip,
	"gz":        CodecGzip,
	"zstd":      CodecZstd,
	"zstandard": CodecZstd,
	"zst":       CodecZstd,
	"deflate":   CodecDeflate,
	"flate":     CodecDeflate,
	"brotli":    CodecBrotli,
	"br":        CodecBrotli,
}

// AllCodecs returns every supported codec in canonical order
func AllCodecs() []Codec {
	return append([]Codec(nil), codecOrder...)
}

// ParseCodec resolves a codec name or alias, case-insensitively
func ParseCodec(name string) (Codec, error) {
	if codec, ok := codecAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return codec, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCodec, name)
}

// Supported reports whether c is a member of the registry
func (c Codec) Supported() bool {
	_, ok := registry[c]
	return ok
}

// Extension returns the suffix appended to compressed outputs, including the dot
func (c Codec) Extension() string {
	return registry[c].ext
}

// DefaultLevel returns the level used when none is configured
func (c Codec) DefaultLevel() int {
	return registry[c].defaultLevel
}

// LevelRange returns the inclusive range of valid levels
func (c Codec) LevelRange() (min, max int) {
	spec := registry[c]
	return spec.minLevel, spec.maxLevel
}

func (c Codec) String() string {
	return string(c)
}

// lookup returns the registry entry for c after validating level
func lookup(c Codec, level int) (codecSpec, error) {
	spec, ok := registry[c]
	if !ok {
		return codecSpec{}, fmt.Errorf("%w: %q", ErrUnsupportedCodec, string(c))
	}
	if level < spec.minLevel || level > spec.maxLevel {
		return codecSpec{}, fmt.Errorf("%w: %s level %d outside [%d, %d]",
			ErrInvalidQuality, c, level, spec.minLevel, spec.maxLevel)
	}
	return spec, nil
}

// Transform compresses data with codec at the given level. It holds no state
// and is safe for concurrent use.
func Transform(codec Codec, data []byte, level int) ([]byte, error) {
	spec, err := lookup(codec, level)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	compressor, err := spec.compressor(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := compressor.Write(data); err != nil {
		compressor.Close()
		return nil, err
	}
	if err := compressor.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Transform
func Decompress(codec Codec, data []byte) ([]byte, error) {
	spec, ok := registry[codec]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, string(codec))
	}

	decompressor, err := spec.decompressor(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	return io.ReadAll(decompressor)
}

// Gzip without name or modification time so outputs are reproducible
func createGzipCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, level)
}

func createGzipDecompressor(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Zstd runs single threaded; with more than one goroutine the encoder would
// compete with the worker pool for CPUs.
func createZstdCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithLowerEncoderMem(true),
		zstd.WithZeroFrames(true))
}

func createZstdDecompressor(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Raw deflate stream (RFC 1951), no zlib framing
func createDeflateCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return flate.NewWriter(w, level)
}

func createDeflateDecompressor(r io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

func createBrotliCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, level), nil
}

func createBrotliDecompressor(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
