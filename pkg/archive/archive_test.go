package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "a,b,c\n1,2,3\n4,5,6\n"

func writePlain(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func writeGzip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func writeZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	stream, err := Open(path)
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	return string(data)
}

func TestOpenPlain(t *testing.T) {
	path := writePlain(t, t.TempDir())
	assert.Equal(t, sampleCSV, readAll(t, path))
}

func TestOpenGzip(t *testing.T) {
	path := writeGzip(t, t.TempDir())
	assert.Equal(t, sampleCSV, readAll(t, path))
}

func TestOpenZip(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{
		"readme.txt": "not this one",
		"DATA.CSV":   sampleCSV,
	})
	assert.Equal(t, sampleCSV, readAll(t, path))
}

func TestOpenZipWithoutCSVEntry(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{"readme.txt": "nope"})
	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CSV entry found")
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()

	plain := writePlain(t, dir)
	count, err := CountLines(plain)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	gz := writeGzip(t, dir)
	count, err = CountLines(gz)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCountLinesMissingFile(t *testing.T) {
	_, err := CountLines(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
