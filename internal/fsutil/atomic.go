// Package fsutil provides the atomic file replacement used for history rewrites
// and the last-check marker.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// AtomicWrite replaces path with data through a temporary file in the same
// directory, so readers see either the old or the new content. When durable
// is set the file and its directory are fsynced before returning; otherwise
// the replacement may be lost in a crash.
func AtomicWrite(path string, data []byte, perm os.FileMode, durable bool) error {
	dir := filepath.Dir(path)
	tmpPath, err := writeTemp(dir, data, perm, durable)
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if !durable {
		return nil
	}
	if err := FsyncDir(dir); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return nil
}

// writeTemp stores data in a new hidden file in dir and returns its name.
// The file is removed again on failure.
func writeTemp(dir string, data []byte, perm os.FileMode, sync bool) (name string, err error) {
	f, err := os.CreateTemp(dir, ".worktime-tmp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return "", err
	}
	if err = f.Chmod(perm); err != nil {
		return "", err
	}
	if sync {
		if err = f.Sync(); err != nil {
			return "", err
		}
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// FsyncDir fsyncs a directory so a rename inside it is durable.
func FsyncDir(dirPath string) error {
	d, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	defer d.Close()
	return d.Sync()
}

// CopyNew copies src to the first free name among base, base.1, base.2, ...
// and returns the name it used. Existing files are never overwritten.
func CopyNew(src, base string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("copy open source: %w", err)
	}
	defer in.Close()

	var out *os.File
	var dst string
	for i := 0; ; i++ {
		dst = base
		if i > 0 {
			dst = base + "." + strconv.Itoa(i)
		}
		out, err = os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("copy create %s: %w", dst, err)
		}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy %s: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy fsync %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("copy close %s: %w", dst, err)
	}
	return dst, nil
}
