// Package precompress writes compressed siblings of every file in a directory
// tree, one per requested codec, so a static file server can hand out
// pre-encoded responses.
//
// For each regular file below the root, Run writes file.gz, file.zst,
// file.deflate and file.br (or the subset requested). Work is spread over a
// bounded pool of goroutines and a failing file never affects another.
//
// # Features
//
//   - 4 codecs: gzip, zstd, raw deflate, brotli
//   - Configurable compression levels per codec
//   - Streaming walk: compression starts while directories are still scanned
//   - Atomic outputs: temp file + rename, nothing half written is ever visible
//   - Symlink cycle detection
//   - Skip patterns, minimum size, max file size
//   - Cancellation and timeouts with a partial report
//   - Optional verification of every output
//
// # Quick Start
//
//	cfg := precompress.DefaultConfig("/srv/www")
//	cfg.Levels = map[precompress.Codec]int{precompress.CodecBrotli: 11}
//
//	report, err := precompress.Run(ctx, cfg)
//	if err != nil {
//	    // invalid configuration, nothing was written
//	}
//	fmt.Println(report.Summary())
//	os.Exit(report.ExitCode())
//
// # Codecs
//
//   - gzip     .gz       levels 1-9   (default 6)
//   - zstd     .zst      levels 1-22  (default 3)
//   - deflate  .deflate  levels 1-9   (default 6), raw RFC 1951 stream
//   - brotli   .br       levels 0-11  (default 6)
//
// Outputs are reproducible: running twice over the same input yields
// byte-identical files. Files that already carry a compression suffix are not
// enumerated unless Config.IncludeCompressed is set, so reruns do not produce
// file.gz.gz.
//
// # Reports
//
// Report.Status tells a clean run, a run with item failures and a cancelled
// run apart. Succeeded + Failed + Pending always equals Total.
package precompress
