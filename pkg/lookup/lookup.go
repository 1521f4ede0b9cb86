// pkg/lookup/lookup.go
//
// Enrichment lookup tables. Both tables are built once before any row
// processing begins and are read-only afterwards, so they are safe to share
// across sequential file iterations or forked extraction work without
// synchronization.
package lookup

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// NormalizeCode trims whitespace and upper-cases a lookup key so case or
// whitespace variance in source data never causes a miss.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// missingValue is the sentinel used by reference extracts for absent fields.
const missingValue = `\N`

// fileExists reports whether a reference file path is usable. Enrichment is
// best-effort: an absent file yields an always-miss table, not an error.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// stripBOM removes a leading UTF-8 byte order mark from a reference stream.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	bom, err := br.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
