package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestGroupByYear(t *testing.T) {
	byYear, unmatched := GroupByYear([]string{
		"flights-2019-02.csv",
		"flights-2019-01.csv",
		"flights-2020-01.csv.gz",
		"notes.txt",
	})

	assert.Equal(t, map[string][]string{
		"2019": {"flights-2019-01.csv", "flights-2019-02.csv"},
		"2020": {"flights-2020-01.csv.gz"},
	}, byYear)
	assert.Equal(t, []string{"notes.txt"}, unmatched)
}

func TestRunMergesYearsIntoDisjointArtifacts(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	jan := writeFile(t, dir, "flights-2019-01.csv", "a,b\n1,jan\n2,jan\n")
	feb := writeFile(t, dir, "flights-2019-02.csv", "a,b\n3,feb\n")
	mar20 := writeFile(t, dir, "flights-2020-03.csv", "a,b\n4,mar\n")

	ex := NewExtractor(outDir, "flights", zap.NewNop())
	results, err := ex.Run(context.Background(), []string{jan, feb, mar20})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byYear := make(map[string]Result)
	for _, res := range results {
		require.True(t, res.Success())
		byYear[res.Year] = res
	}

	res2019 := byYear["2019"]
	assert.Equal(t, int64(3), res2019.Rows)
	assert.Equal(t, filepath.Join(outDir, "flights-2019.csv.gz"), res2019.OutputPath)
	// First file's header is kept, the second's is dropped.
	assert.Equal(t, "a,b\n1,jan\n2,jan\n3,feb\n", readGzip(t, res2019.OutputPath))

	res2020 := byYear["2020"]
	assert.Equal(t, int64(1), res2020.Rows)
	assert.Equal(t, "a,b\n4,mar\n", readGzip(t, res2020.OutputPath))
}

func TestRunReportsMissingInputAsFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "flights-2019-01.csv", "a,b\n1,x\n")
	missing := filepath.Join(dir, "flights-2020-01.csv")

	ex := NewExtractor(filepath.Join(dir, "out"), "flights", zap.NewNop())
	results, err := ex.Run(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	for _, res := range results {
		if res.Year == "2019" {
			assert.True(t, res.Success())
		} else {
			assert.False(t, res.Success())
		}
	}

	// A failed year leaves no partial artifact behind.
	_, statErr := os.Stat(filepath.Join(dir, "out", "flights-2020.csv.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRejectsEmptyInput(t *testing.T) {
	ex := NewExtractor(t.TempDir(), "flights", zap.NewNop())
	_, err := ex.Run(context.Background(), []string{"notes.txt"})
	require.Error(t, err)
}
