package precompress

import "runtime"

// Preset configurations for common use cases

// FastestConfig returns a configuration optimized for speed
func FastestConfig(root string) *Config {
	return &Config{
		Root:   root,
		Codecs: AllCodecs(),
		Levels: map[Codec]int{
			CodecGzip:    1,
			CodecZstd:    1,
			CodecDeflate: 1,
			CodecBrotli:  1,
		},
		Concurrency: runtime.GOMAXPROCS(0),
		MaxFileSize: DefaultMaxFileSize,
	}
}

// BestCompressionConfig returns a configuration optimized for maximum
// compression, for static assets that are compressed once and served often
func BestCompressionConfig(root string) *Config {
	return &Config{
		Root:   root,
		Codecs: AllCodecs(),
		Levels: map[Codec]int{
			CodecGzip:    9,
			CodecZstd:    19,
			CodecDeflate: 9,
			CodecBrotli:  11,
		},
		Concurrency: runtime.GOMAXPROCS(0),
		MaxFileSize: DefaultMaxFileSize,
		MinSize:     256, // below this the framing overhead dominates
		SkipPatterns: []string{
			`\.(jpg|jpeg|png|gif|webp|avif|ico)$`,
			`\.(mp4|webm|mp3|ogg|woff2?)$`,
			`\.(zip|7z|xz|bz2|lz4|sz|zz|gzip|zstd)$`,
		},
	}
}

// CompatibleConfig returns a configuration producing gzip only, which every
// HTTP client accepts
func CompatibleConfig(root string) *Config {
	return &Config{
		Root:        root,
		Codecs:      []Codec{CodecGzip},
		Levels:      map[Codec]int{CodecGzip: 6},
		Concurrency: runtime.GOMAXPROCS(0),
		MaxFileSize: DefaultMaxFileSize,
	}
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
// E.g., 0.5 means the compressed size is 50% of the original
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the compression percentage
// Returns the percentage of space saved (0-100)
// E.g., 50 means 50% space savings
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
