package precompress

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// maxLinkHops matches the kernel's MAXSYMLINKS on Linux
const maxLinkHops = 40

var errTooManyLinks = errors.New("too many levels of symbolic links")

// realPath resolves symlinks in path. On the OS filesystem every component is
// resolved; other afero filesystems only expose per-entry links, so only the
// final component is followed there.
func realPath(fsys afero.Fs, path string) (string, error) {
	if _, ok := fsys.(*afero.OsFs); ok {
		return filepath.EvalSymlinks(path)
	}

	lstater, ok := fsys.(afero.Lstater)
	if !ok {
		return filepath.Clean(path), nil
	}
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return filepath.Clean(path), nil
	}

	path = filepath.Clean(path)
	for hops := 0; hops < maxLinkHops; hops++ {
		info, lstatCalled, err := lstater.LstatIfPossible(path)
		if err != nil {
			return "", err
		}
		if !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}

		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return "", &os.PathError{Op: "realpath", Path: path, Err: errTooManyLinks}
}
