package precompress

import (
	"testing"
)

func TestExtensionDetection(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantCodec Codec
		wantOk    bool
	}{
		{"gzip", "file.gz", CodecGzip, true},
		{"gzip-upper", "FILE.GZ", CodecGzip, true},
		{"zstd", "file.zst", CodecZstd, true},
		{"zstd-long", "file.zstd", "", false},
		{"deflate", "file.deflate", CodecDeflate, true},
		{"brotli", "file.br", CodecBrotli, true},
		{"lz4", "file.lz4", "", false},
		{"zip", "site.zip", "", false},
		{"none", "file.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, ok := DetectCodecFromExtension(tt.filename)
			if ok != tt.wantOk {
				t.Errorf("Expected ok=%v, got %v", tt.wantOk, ok)
			}
			if codec != tt.wantCodec {
				t.Errorf("Expected codec=%s, got %s", tt.wantCodec, codec)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		path  string
		codec Codec
		want  string
	}{
		{"/srv/a.txt", CodecGzip, "/srv/a.txt.gz"},
		{"/srv/a.txt", CodecZstd, "/srv/a.txt.zst"},
		{"/srv/a.txt", CodecDeflate, "/srv/a.txt.deflate"},
		{"/srv/sub/b", CodecBrotli, "/srv/sub/b.br"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.path, tt.codec); got != tt.want {
			t.Errorf("OutputPath(%q, %s) = %q, want %q", tt.path, tt.codec, got, tt.want)
		}
		if got := (WorkItem{Path: tt.path, Codec: tt.codec}).Output(); got != tt.want {
			t.Errorf("WorkItem.Output() = %q, want %q", got, tt.want)
		}
	}
}

func TestExtensionDetectionMatchesRegistry(t *testing.T) {
	for _, codec := range AllCodecs() {
		got, ok := DetectCodecFromExtension(OutputPath("/srv/index.html", codec))
		if !ok || got != codec {
			t.Errorf("%s output detected as %q (ok=%v)", codec, got, ok)
		}
	}
}
