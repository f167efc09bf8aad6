package store

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// entryName matches the files path and writeEntry create.
var entryName = regexp.MustCompile(`^([a-z]+-[0-9a-f]{32}|\.tmp-[0-9]+)$`)

// path lays entries out as <dir>/<provider>/<kind>-<md5(location)>.
func (s *Store) path(key Key) string {
	sum := md5.Sum([]byte(key.Location))
	name := string(key.Kind) + "-" + hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, filepath.Base(key.Provider), name)
}

// readEntry loads one entry. The payload and its mtime come from the same
// open file, so a concurrent rename cannot pair a payload with the wrong time.
func readEntry(path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: stat %s: %v", ErrCache, path, err)
	}

	payload, err := io.ReadAll(f)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: read %s: %v", ErrCache, path, err)
	}

	return Entry{Payload: payload, FetchedAt: info.ModTime()}, nil
}

// writeEntry replaces the entry at path atomically: the payload is written to
// a temp file in the same directory, stamped with FetchedAt and renamed.
func writeEntry(path string, e Entry) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrCache, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", ErrCache, dir, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(e.Payload); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrCache, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrCache, tmp.Name(), err)
	}
	if err = os.Chtimes(tmp.Name(), e.FetchedAt, e.FetchedAt); err != nil {
		return fmt.Errorf("%w: stamp %s: %v", ErrCache, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", ErrCache, path, err)
	}
	return nil
}

// clearProviderDir removes the entry and temp files in dir, then dir itself
// if nothing else is left in it.
func clearProviderDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range files {
		if f.IsDir() || !entryName.MatchString(f.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, f.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if rest, err := os.ReadDir(dir); err == nil && len(rest) == 0 {
		if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
