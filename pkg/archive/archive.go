// pkg/archive/archive.go
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Open returns a sequential UTF-8 byte stream for a data file, regardless of
// whether it is plain text, gzip-compressed, or a zip archive wrapping a
// single CSV entry. Closing the returned stream releases every underlying
// handle.
func Open(path string) (io.ReadCloser, error) {
	base := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(base, ".zip"):
		return openZip(path)
	case strings.HasSuffix(base, ".gz"):
		return openGzip(path)
	default:
		return os.Open(path)
	}
}

func openGzip(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}

	return &chainCloser{Reader: gz, closers: []io.Closer{gz, file}}, nil
}

func openZip(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive %s: %w", path, err)
	}

	entry := csvEntry(&zr.Reader)
	if entry == nil {
		zr.Close()
		return nil, fmt.Errorf("no CSV entry found in %s", path)
	}

	rc, err := entry.Open()
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("failed to open zip entry %s: %w", entry.Name, err)
	}

	return &chainCloser{Reader: rc, closers: []io.Closer{rc, zr}}, nil
}

// csvEntry selects the first entry whose name ends in .csv, case-insensitive.
func csvEntry(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			return f
		}
	}
	return nil
}

// chainCloser closes every handle in the decompression chain on every exit
// path, innermost first.
type chainCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *chainCloser) Close() error {
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CountLines counts newlines in a data file without extracting it to disk.
// Used by the pre-count path, so a failure here should degrade, not abort.
func CountLines(path string) (int64, error) {
	stream, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	var count int64
	buf := make([]byte, 32*1024)
	for {
		n, err := stream.Read(buf)
		count += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}
