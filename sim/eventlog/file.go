package eventlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// CompressedExt marks artifacts stored as a snappy framed stream.
const CompressedExt = ".sz"

// IsCompressedPath reports whether path selects the snappy-framed form.
func IsCompressedPath(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}

// WriteFile atomically writes records to path. Parent directories are
// created as needed; the file only appears once fully written and synced.
func WriteFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory for %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := encodeTo(tmp, path, records); err != nil {
		return fmt.Errorf("writing event log to %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing event log to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing event log %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming event log into %s: %w", path, err)
	}
	committed = true
	return nil
}

func encodeTo(f *os.File, path string, records []Record) error {
	if IsCompressedPath(path) {
		sw := snappy.NewBufferedWriter(f)
		if err := Encode(sw, records); err != nil {
			return err
		}
		return sw.Close()
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, records); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile loads an artifact written by WriteFile, decompressing
// snappy-framed files by extension.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event log %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if IsCompressedPath(path) {
		r = snappy.NewReader(r)
	}
	records, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("parsing event log %s: %w", path, err)
	}
	return records, nil
}
