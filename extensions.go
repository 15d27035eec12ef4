package precompress

import (
	"path/filepath"
	"strings"
)

// Reverse extension mapping (extension -> codec). Only the suffixes the
// engine itself writes, so a rerun never compresses its own outputs.
var reverseExtensionMap = map[string]Codec{
	".gz":      CodecGzip,
	".zst":     CodecZstd,
	".deflate": CodecDeflate,
	".br":      CodecBrotli,
}

// OutputPath returns the sibling path written for path and codec
func OutputPath(path string, codec Codec) string {
	return path + codec.Extension()
}

// DetectCodecFromExtension reports which codec wrote name, judging by its suffix
func DetectCodecFromExtension(name string) (Codec, bool) {
	codec, ok := reverseExtensionMap[strings.ToLower(filepath.Ext(name))]
	return codec, ok
}
