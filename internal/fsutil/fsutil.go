// Package fsutil reads state and config files without following paths out of
// their directory.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxDocumentSize bounds the files read by ReadDocument.
const MaxDocumentSize = 16 << 20

// ReadFileScoped reads a file by opening a root at the file's directory.
func ReadFileScoped(path string) ([]byte, error) {
	return readScoped(path, -1)
}

// ReadDocument is ReadFileScoped with a MaxDocumentSize limit. Larger files
// are rejected instead of being read into memory.
func ReadDocument(path string) ([]byte, error) {
	return readScoped(path, MaxDocumentSize)
}

func readScoped(path string, limit int64) ([]byte, error) {
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid file path: %q", path)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if limit < 0 {
		return io.ReadAll(file)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", base, limit)
	}
	return data, nil
}
