package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEnglish(t *testing.T) {
	code, ok := Detect("Ride the lightning, thunder in the sky, we race against the night")
	require.True(t, ok)
	assert.Equal(t, "en", code)
}

func TestDetectGerman(t *testing.T) {
	code, ok := Detect("Die Nacht ist dunkel und der Wind weht kalt über die Berge")
	require.True(t, ok)
	assert.Equal(t, "de", code)
}

func TestDetectRejectsShortInput(t *testing.T) {
	_, ok := Detect("")
	assert.False(t, ok)

	_, ok = Detect("   \n ")
	assert.False(t, ok)

	_, ok = Detect("ohm")
	assert.False(t, ok)
}

func TestNameMapsKnownCodes(t *testing.T) {
	assert.Equal(t, "English", Name("en"))
	assert.Equal(t, "Finnish", Name("fi"))
	// Unknown codes pass through so nothing ever panics or vanishes.
	assert.Equal(t, "xx", Name("xx"))
}
