package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/storage"
)

const (
	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
	writeBufferSize = 64 * 1024
)

// File reads and writes the embedding lookup file: a JSON array of
// {"name", "embedding"} objects in production order.
type File struct {
	path   string
	logger *slog.Logger
}

var (
	_ storage.ResultWriter = (*File)(nil)
	_ storage.ResultReader = (*File)(nil)
)

func newFile(path string) *File {
	return &File{
		path:   path,
		logger: slog.Default().With("component", "jsonfile"),
	}
}

// NewWriter returns a ResultWriter for the lookup file at path.
func NewWriter(path string) storage.ResultWriter {
	return newFile(path)
}

// NewReader returns a ResultReader for the lookup file at path.
func NewReader(path string) storage.ResultReader {
	return newFile(path)
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// WriteResults replaces the file with results.
// The array is written to a temporary file in the same directory and renamed
// over the destination, so readers see either the old file or the new one.
func (f *File) WriteResults(ctx context.Context, results []core.EmbeddingResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateResults(results); err != nil {
		return err
	}
	if results == nil {
		results = []core.EmbeddingResult{}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, defaultFilePerm)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}

	bw := bufio.NewWriterSize(tmp, writeBufferSize)
	if err := json.NewEncoder(bw).Encode(results); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	f.logger.Debug("wrote lookup file", "path", f.path, "items", len(results))
	return nil
}

// ReadResults loads the lookup file.
// Returns storage.ErrNotFound if the file does not exist.
func (f *File) ReadResults(ctx context.Context) ([]core.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, f.path)
		}
		return nil, err
	}
	defer fh.Close()

	var results []core.EmbeddingResult
	if err := json.NewDecoder(bufio.NewReader(fh)).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, f.path, err)
	}
	if results == nil {
		results = []core.EmbeddingResult{}
	}
	return results, nil
}
