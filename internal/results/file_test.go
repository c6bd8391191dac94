package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qteleport/internal/sim"
)

func TestSaveWritesSortedMapping(t *testing.T) {
	dir := t.TempDir()
	counts := sim.Counts{"01100": 3, "00000": 7, "01000": 1, "00100": 5}

	path, err := Save(counts, "bell0", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "res_bell0.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `"00000": 7
"00100": 5
"01000": 1
"01100": 3
`, string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, counts, loaded)
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "runs")
	path, err := Save(sim.Counts{"1": 2}, "x", dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(sim.Counts{"0": 1}, "run", dir)
	require.NoError(t, err)
	path, err := Save(sim.Counts{"1": 9}, "run", dir)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sim.Counts{"1": 9}, loaded)
}

func TestSaveRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "a/b", `a\b`, "..", "."} {
		_, err := Save(sim.Counts{"0": 1}, name, t.TempDir())
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, ErrInvalidName), "name %q: %v", name, err)
	}
}

func TestDecodeCountsRejectsGarbage(t *testing.T) {
	_, err := DecodeCounts([]byte(`"0a1": 3`))
	assert.Error(t, err)

	_, err = DecodeCounts([]byte(`"01": -3`))
	assert.Error(t, err)

	_, err = DecodeCounts([]byte(`- 1`))
	assert.Error(t, err)
}

func TestEncodeEmptyCounts(t *testing.T) {
	data, err := EncodeCounts(sim.Counts{})
	require.NoError(t, err)

	counts, err := DecodeCounts(data)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
