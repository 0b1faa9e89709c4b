package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundled(t *testing.T) {
	data, err := LoadBundled()
	require.NoError(t, err)

	assert.NotEmpty(t, data.Stars)
	assert.NotEmpty(t, data.Reviews)
	assert.NotEmpty(t, data.Votes)

	for _, r := range data.Reviews {
		assert.GreaterOrEqual(t, r.Stars, 1)
		assert.LessOrEqual(t, r.Stars, 5)
		assert.NotEmpty(t, r.Location)
	}
	for _, s := range data.Stars {
		assert.NotEmpty(t, s.Location)
		assert.GreaterOrEqual(t, s.Star, 0.0)
		assert.LessOrEqual(t, s.Star, 5.0)
	}
}

func TestLoadStarsCanonicalShape(t *testing.T) {
	raw := []byte(`[{"location":"رام الله","star":4.2},{"location":"نابلس","star":3.8}]`)

	entries, err := LoadStars(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "رام الله", entries[0].Location)
	assert.InDelta(t, 4.2, entries[0].Star, 1e-9)
}

func TestLoadStarsMigratesLegacyMap(t *testing.T) {
	raw := []byte(`{"b-branch":3.5,"a-branch":4.0}`)

	entries, err := LoadStars(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Migrated entries come out in stable location order.
	assert.Equal(t, "a-branch", entries[0].Location)
	assert.InDelta(t, 4.0, entries[0].Star, 1e-9)
	assert.Equal(t, "b-branch", entries[1].Location)
}

func TestLoadStarsRejectsOtherShapes(t *testing.T) {
	_, err := LoadStars([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = LoadStars([]byte(`{"branch":"not-a-number"}`))
	assert.Error(t, err)
}
