package precompress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// WorkItem is one (file, codec) compression task
type WorkItem struct {
	Path  string `json:"path"`
	Codec Codec  `json:"codec"`
}

// Output returns the path the item writes
func (it WorkItem) Output() string {
	return OutputPath(it.Path, it.Codec)
}

// WorkResult is the outcome of exactly one WorkItem. Err is nil on success;
// on failure only Item and Err are meaningful.
type WorkResult struct {
	Item       WorkItem   `json:"item"`
	OutputPath string     `json:"output_path,omitempty"`
	InputSize  int64      `json:"input_size"`
	OutputSize int64      `json:"output_size"`
	Err        *ItemError `json:"-"`
}

// OK reports whether the item succeeded
func (r WorkResult) OK() bool {
	return r.Err == nil
}

// WorkerOptions configures a Worker
type WorkerOptions struct {
	// Levels per codec; missing entries use the codec default
	Levels map[Codec]int

	// Files above this size fail with ErrFileTooLarge (default: 256MiB)
	MaxFileSize int64

	// Decode the output and compare it with the input before committing it
	Verify bool

	Logger *zap.Logger
}

// Worker turns one WorkItem into one compressed sibling file. A Worker holds
// no per-item state and may be shared by any number of goroutines.
type Worker struct {
	fs   afero.Fs
	opts WorkerOptions
	log  *zap.Logger
}

// NewWorker creates a worker writing to fsys
func NewWorker(fsys afero.Fs, opts WorkerOptions) *Worker {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{fs: fsys, opts: opts, log: log}
}

func (w *Worker) level(codec Codec) int {
	if lvl, ok := w.opts.Levels[codec]; ok {
		return lvl
	}
	return codec.DefaultLevel()
}

// Process compresses item. Every failure, including a panic inside a codec,
// is captured in the returned result.
func (w *Worker) Process(item WorkItem) (res WorkResult) {
	res.Item = item

	defer func() {
		if r := recover(); r != nil {
			res = WorkResult{
				Item: item,
				Err:  newItemError(KindTransform, item, fmt.Errorf("panic: %v", r)),
			}
		}
		if res.Err != nil {
			w.log.Debug("item failed",
				zap.String("path", item.Path),
				zap.Stringer("codec", item.Codec),
				zap.String("kind", string(res.Err.Kind)),
				zap.Error(res.Err.Err))
		}
	}()

	data, perm, ierr := w.read(item)
	if ierr != nil {
		res.Err = ierr
		return res
	}
	res.InputSize = int64(len(data))

	out, err := Transform(item.Codec, data, w.level(item.Codec))
	if err != nil {
		res.Err = newItemError(KindTransform, item, err)
		return res
	}
	if w.opts.Verify {
		if err := verify(item.Codec, out, data); err != nil {
			res.Err = newItemError(KindTransform, item, err)
			return res
		}
	}

	dst := item.Output()
	if err := writeFileAtomic(w.fs, dst, out, perm); err != nil {
		res.Err = newItemError(KindWrite, item, err)
		return res
	}

	res.OutputPath = dst
	res.OutputSize = int64(len(out))
	w.log.Debug("item compressed",
		zap.String("path", item.Path),
		zap.Stringer("codec", item.Codec),
		zap.Int64("in", res.InputSize),
		zap.Int64("out", res.OutputSize))
	return res
}

// read loads the source file, refusing to hold more than MaxFileSize bytes
func (w *Worker) read(item WorkItem) ([]byte, os.FileMode, *ItemError) {
	f, err := w.fs.Open(item.Path)
	if err != nil {
		return nil, 0, newItemError(KindRead, item, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, newItemError(KindRead, item, err)
	}
	if !info.Mode().IsRegular() {
		return nil, 0, newItemError(KindRead, item, fmt.Errorf("%s is not a regular file", item.Path))
	}
	if info.Size() > w.opts.MaxFileSize {
		return nil, 0, newItemError(KindFileTooLarge, item,
			fmt.Errorf("%d bytes exceeds limit of %d", info.Size(), w.opts.MaxFileSize))
	}

	// The file may grow between Stat and ReadAll.
	data, err := io.ReadAll(io.LimitReader(f, w.opts.MaxFileSize+1))
	if err != nil {
		return nil, 0, newItemError(KindRead, item, err)
	}
	if int64(len(data)) > w.opts.MaxFileSize {
		return nil, 0, newItemError(KindFileTooLarge, item,
			fmt.Errorf("file grew beyond limit of %d bytes while reading", w.opts.MaxFileSize))
	}
	return data, info.Mode().Perm(), nil
}

var errVerifyMismatch = errors.New("decoded output does not match input")

func verify(codec Codec, compressed, original []byte) error {
	decoded, err := Decompress(codec, compressed)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !bytes.Equal(decoded, original) {
		return errVerifyMismatch
	}
	return nil
}
