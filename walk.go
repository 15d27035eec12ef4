package precompress

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// EventKind classifies a non-fatal walk event
type EventKind string

const (
	// EventCycleSkipped: a directory symlink pointing at the directory being
	// walked or one of its ancestors was not followed.
	EventCycleSkipped EventKind = "cycle_skipped"
	// EventOutsideRoot: a directory symlink resolving outside the root was not followed.
	EventOutsideRoot EventKind = "outside_root"
	// EventAliasSkipped: a directory symlink resolving to another directory
	// below the root was not followed; its files are produced under their
	// real path.
	EventAliasSkipped EventKind = "alias_skipped"
	// EventEntryError: an entry could not be read (permission denied, vanished, dangling link).
	EventEntryError EventKind = "entry_error"
	// EventFiltered: a file was excluded by the walk options.
	EventFiltered EventKind = "filtered"
)

// Filter reasons reported in WalkEvent.Message for EventFiltered
const (
	FilterTempFile   = "temp_file"
	FilterCompressed = "compressed"
	FilterPattern    = "skip_pattern"
	FilterMinSize    = "min_size"
	FilterSymlink    = "symlink"
)

// WalkEvent is reported for every entry the walker does not produce
type WalkEvent struct {
	Kind    EventKind `json:"kind"`
	Path    string    `json:"path"`
	Target  string    `json:"target,omitempty"`
	Message string    `json:"message,omitempty"`
}

// WalkOptions controls which files a Walker produces
type WalkOptions struct {
	Skip              *regexp.Regexp
	MinSize           int64
	IncludeCompressed bool

	// OnEvent receives non-fatal events on the walking goroutine
	OnEvent func(WalkEvent)
}

// Walker enumerates regular files below a root directory
type Walker struct {
	fs   afero.Fs
	opts WalkOptions
}

// NewWalker creates a walker over fsys
func NewWalker(fsys afero.Fs, opts WalkOptions) *Walker {
	return &Walker{fs: fsys, opts: opts}
}

// Walk validates root and returns a lazy, depth-first sequence of the absolute
// paths of the regular files below it. Entries of one directory are produced
// in lexical order. The sequence stops early when ctx is done or the consumer
// stops ranging over it, and is meant to be consumed once.
//
// Directory symlinks are resolved and reported but never followed, so every
// file is produced exactly once, under its real path below root. Symlinks to
// files are not produced either.
func (w *Walker) Walk(ctx context.Context, root string) (iter.Seq[string], error) {
	root = filepath.Clean(root)

	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	realRoot, err := realPath(w.fs, root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}

	return func(yield func(string) bool) {
		t := &traversal{
			w:        w,
			ctx:      ctx,
			root:     root,
			realRoot: realRoot,
			yield:    yield,
		}
		t.dir(root, []string{realRoot})
	}, nil
}

func (w *Walker) emit(ev WalkEvent) {
	if w.opts.OnEvent != nil {
		w.opts.OnEvent(ev)
	}
}

// traversal is the state of one Walk sequence
type traversal struct {
	w        *Walker
	ctx      context.Context
	root     string
	realRoot string
	yield    func(string) bool
}

// dir walks path, whose resolved location is the last element of ancestors.
// It returns false once the walk must stop.
func (t *traversal) dir(path string, ancestors []string) bool {
	if t.ctx.Err() != nil {
		return false
	}

	entries, err := afero.ReadDir(t.w.fs, path)
	if err != nil {
		t.w.emit(WalkEvent{Kind: EventEntryError, Path: path, Message: err.Error()})
		return true
	}

	resolved := ancestors[len(ancestors)-1]
	for _, info := range entries {
		if t.ctx.Err() != nil {
			return false
		}

		name := info.Name()
		child := filepath.Join(path, name)
		mode := info.Mode()

		switch {
		case mode&os.ModeSymlink != 0:
			t.link(child, ancestors)
		case info.IsDir():
			if !t.dir(child, append(ancestors, filepath.Join(resolved, name))) {
				return false
			}
		case mode.IsRegular():
			if reason := t.filter(child, info); reason != "" {
				t.w.emit(WalkEvent{Kind: EventFiltered, Path: child, Message: reason})
				continue
			}
			if !t.yield(child) {
				return false
			}
		}
	}
	return true
}

// link classifies the symlink at path. Links are never descended into: a
// target below the root is walked through its real path anyway.
func (t *traversal) link(path string, ancestors []string) {
	target, err := realPath(t.w.fs, path)
	if err != nil {
		t.w.emit(WalkEvent{Kind: EventEntryError, Path: path, Message: err.Error()})
		return
	}

	info, err := t.w.fs.Stat(target)
	if err != nil {
		t.w.emit(WalkEvent{Kind: EventEntryError, Path: path, Target: target, Message: err.Error()})
		return
	}
	if !info.IsDir() {
		t.w.emit(WalkEvent{Kind: EventFiltered, Path: path, Target: target, Message: FilterSymlink})
		return
	}

	if !isUnder(target, t.realRoot) {
		t.w.emit(WalkEvent{Kind: EventOutsideRoot, Path: path, Target: target})
		return
	}
	for _, a := range ancestors {
		if isUnder(a, target) {
			t.w.emit(WalkEvent{Kind: EventCycleSkipped, Path: path, Target: target})
			return
		}
	}
	t.w.emit(WalkEvent{Kind: EventAliasSkipped, Path: path, Target: target})
}

// filter returns the reason a regular file is excluded, or ""
func (t *traversal) filter(path string, info os.FileInfo) string {
	name := info.Name()
	if isTempFile(name) {
		return FilterTempFile
	}
	if _, ok := DetectCodecFromExtension(name); ok && !t.w.opts.IncludeCompressed {
		return FilterCompressed
	}
	if t.w.opts.Skip != nil {
		rel, err := filepath.Rel(t.root, path)
		if err == nil && t.w.opts.Skip.MatchString(filepath.ToSlash(rel)) {
			return FilterPattern
		}
	}
	if info.Size() < t.w.opts.MinSize {
		return FilterMinSize
	}
	return ""
}

// isUnder reports whether path is base or lies below it
func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	if strings.HasSuffix(base, sep) {
		return strings.HasPrefix(path, base)
	}
	return strings.HasPrefix(path, base+sep)
}
