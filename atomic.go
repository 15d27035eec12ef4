package precompress

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// tempSuffix marks in-progress outputs; the walker never produces such files.
const tempSuffix = ".precompress-tmp"

func isTempFile(name string) bool {
	return strings.HasSuffix(name, tempSuffix)
}

// writeFileAtomic writes data to dst through a hidden temp file in the same
// directory, then renames it into place. On failure the temp file is removed
// and dst is left untouched.
func writeFileAtomic(fsys afero.Fs, dst string, data []byte, perm os.FileMode) (err error) {
	dir, name := filepath.Split(dst)

	tmp, err := afero.TempFile(fsys, dir, "."+name+".*"+tempSuffix)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			err = multierr.Append(err, tmp.Close())
		}
		if rmErr := fsys.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}()

	if err = writeAll(tmp, data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmpName, perm); err != nil {
		return err
	}
	return fsys.Rename(tmpName, dst)
}

func writeAll(f afero.File, b []byte) error {
	for len(b) > 0 {
		n, err := f.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
