package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "JFK", NormalizeCode(" jfk "))
	assert.Equal(t, "JFK", NormalizeCode("JFK"))
	assert.Equal(t, "JFK", NormalizeCode("jfk"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestAirportLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airports.csv")
	content := `1,"John F Kennedy Intl","New York","United States","JFK","KJFK",40.639751,-73.778925,13,-5,"A"
2,"Bad Coordinates","Nowhere","United States","BAD","XBAD",not-a-number,0.0,0,0,"A"
3,"No Code","Nowhere","United States",\N,"XXXX",1.0,2.0,0,0,"A"
short,row
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	airports, err := NewAirportLookup(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, airports.Size())
	assert.Equal(t, "40.639751,-73.778925", airports.Coordinates("JFK"))
	assert.Equal(t, "40.639751,-73.778925", airports.Coordinates(" jfk "))
	assert.Equal(t, "", airports.Coordinates("BAD"))
	assert.Equal(t, "", airports.Coordinates(""))
}

func TestAirportLookupMissingFile(t *testing.T) {
	airports, err := NewAirportLookup(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, airports.Size())
	assert.Equal(t, "", airports.Coordinates("JFK"))
}

func TestCancellationLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cancellations.csv")
	// Leading BOM, as exported by some spreadsheet tools.
	content := "\xEF\xBB\xBFCode,Description\nA,Carrier\nB,Weather\n, Missing Code\nE,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cancellations, err := NewCancellationLookup(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, cancellations.Size())
	assert.Equal(t, "Carrier", cancellations.Reason("A"))
	assert.Equal(t, "Weather", cancellations.Reason(" b "))
	assert.Equal(t, "", cancellations.Reason("E"))
	assert.Equal(t, "", cancellations.Reason(""))
}

func TestCancellationLookupMissingFile(t *testing.T) {
	cancellations, err := NewCancellationLookup("", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, cancellations.Size())
	assert.Equal(t, "", cancellations.Reason("A"))
}
