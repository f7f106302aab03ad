package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// TempFilePrefix marks staged writes. Key listing and the watcher skip them.
const TempFilePrefix = ".sketchnotes-tmp-"

// staleStageAge is how old a staged file must be before Initialize sweeps it.
const staleStageAge = time.Minute

// replaceFile stages data beside target, renames it over target and syncs the
// directory. A failed call leaves target untouched and no staged file behind.
func replaceFile(target string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}

	staged, err := os.CreateTemp(dir, TempFilePrefix+base+"-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(staged.Name())
		}
	}()

	if err = errors.Join(fill(staged, data, perm), staged.Close()); err != nil {
		return fmt.Errorf("failed to stage %s: %w", base, err)
	}
	if err = os.Rename(staged.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", base, err)
	}
	return syncDir(dir)
}

func fill(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Chmod(perm); err != nil {
		return err
	}
	return f.Sync()
}

// syncDir flushes the directory entry of a rename. Windows cannot open
// directories for syncing.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	return errors.Join(d.Sync(), d.Close())
}

// sweepStaged removes staged files in dir older than age, left by writers
// that died between staging and rename. It returns how many were removed.
func sweepStaged(dir string, age time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-age)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempFilePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
