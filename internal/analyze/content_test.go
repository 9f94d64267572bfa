package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkstats/metallyrics/internal/model"
)

func TestLoadSwearWords(t *testing.T) {
	t.Parallel()

	// Empty path falls back to the built-in list.
	words, err := LoadSwearWords("")
	require.NoError(t, err)
	assert.NotEmpty(t, words)

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Foo\n\n  bar  \nBAZ\n"), 0o600))
	words, err = LoadSwearWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar", "baz"}, words)

	_, err = LoadSwearWords(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSwearRatioCountsWholeTokens(t *testing.T) {
	t.Parallel()

	swears := []string{"damn", "hell"}

	// Six tokens, three of them swears; punctuation splits tokens.
	ratio := SwearRatio("Damn, this hell-bound road! DAMN!", swears)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	// Substrings do not count.
	assert.Zero(t, SwearRatio("hello shelled damnation", swears))
	assert.Zero(t, SwearRatio("", swears))
	assert.Zero(t, SwearRatio("   \n ", swears))
}

func TestColemanLiau(t *testing.T) {
	t.Parallel()

	simple := "The cat sat on the mat."
	dense := "Extraordinarily sophisticated manifestations demonstrate unquestionable magnificence."

	assert.Equal(t, 1, ColemanLiau(""))
	assert.Equal(t, 1, ColemanLiau(simple))
	assert.Greater(t, ColemanLiau(dense), ColemanLiau(simple))

	// Lyrics without sentence punctuation still score.
	assert.GreaterOrEqual(t, ColemanLiau("burning skies over silent mountains forever"), 1)
}

func contentDataset() model.Dataset {
	return model.Dataset{
		{
			Name: "Mournfall",
			Albums: []model.Album{
				{Title: "Embers", ReleaseYear: 1994, Songs: []model.Song{
					{Title: "One", Lyrics: "damn the night damn the light", Language: "en"},
					{Title: "Two", Lyrics: "calm words without any edge", Language: "en"},
					{Title: "Trois", Lyrics: "la nuit tombe sur les montagnes", Language: "fr"},
					{Title: "Interlude", Lyrics: ""},
				}},
				{Title: "First Tape", Songs: []model.Song{
					// No release year, excluded entirely.
					{Title: "Rough", Lyrics: "early words of the band", Language: "en"},
				}},
			},
		},
		{
			Name: "Zenith",
			Albums: []model.Album{
				{Title: "Noon", ReleaseYear: 2005, Songs: []model.Song{
					{Title: "First", Lyrics: "clear skies and open roads ahead", Language: "en"},
				}},
			},
		},
	}
}

func TestContentSongsFiltersAndMeasures(t *testing.T) {
	t.Parallel()

	songs := ContentSongs(contentDataset(), 5, []string{"damn"}, 0)
	require.Len(t, songs, 3)

	byArtistRatio := make(map[string]float64)
	for _, sc := range songs {
		byArtistRatio[sc.Artist] += sc.SwearRatio
	}
	// "One" has 2 swears in 6 tokens; "Two" has none.
	assert.InDelta(t, 1.0/3.0, byArtistRatio["Mournfall"], 1e-9)
	assert.Zero(t, byArtistRatio["Zenith"])

	for _, sc := range songs {
		assert.GreaterOrEqual(t, sc.Readability, 1)
		assert.NotZero(t, sc.Year)
	}
}

func TestContentSongsTopBandsCap(t *testing.T) {
	t.Parallel()

	// Mournfall has two qualifying songs, Zenith one; a cap of one band
	// keeps only Mournfall.
	songs := ContentSongs(contentDataset(), 5, []string{"damn"}, 1)
	require.Len(t, songs, 2)
	for _, sc := range songs {
		assert.Equal(t, "Mournfall", sc.Artist)
	}
}

func TestContentByArtist(t *testing.T) {
	t.Parallel()

	songs := []SongContent{
		{Artist: "A", Year: 1990, SwearRatio: 0.2, Readability: 2},
		{Artist: "A", Year: 1991, SwearRatio: 0.4, Readability: 4},
		{Artist: "B", Year: 1990, SwearRatio: 0.1, Readability: 8},
	}
	got := ContentByArtist(songs)
	require.Len(t, got, 2)

	// Most-measured artist first.
	assert.Equal(t, "A", got[0].Artist)
	assert.Equal(t, 2, got[0].Songs)
	assert.InDelta(t, 0.3, got[0].AvgSwearRatio, 1e-9)
	assert.InDelta(t, 3.0, got[0].AvgReadability, 1e-9)

	assert.Equal(t, "B", got[1].Artist)
	assert.InDelta(t, 0.1, got[1].AvgSwearRatio, 1e-9)
}

func TestContentByYearAscending(t *testing.T) {
	t.Parallel()

	songs := []SongContent{
		{Artist: "A", Year: 2005, SwearRatio: 0.2, Readability: 2},
		{Artist: "A", Year: 1990, SwearRatio: 0.4, Readability: 4},
		{Artist: "B", Year: 2005, SwearRatio: 0.4, Readability: 6},
	}
	got := ContentByYear(songs)
	require.Len(t, got, 2)
	assert.Equal(t, 1990, got[0].Year)
	assert.Equal(t, 2005, got[1].Year)
	assert.InDelta(t, 0.3, got[1].AvgSwearRatio, 1e-9)
	assert.InDelta(t, 4.0, got[1].AvgReadability, 1e-9)
}

func TestStupidSongsCurve(t *testing.T) {
	t.Parallel()

	songs := []SongContent{
		{Artist: "A", Year: 1990, SwearRatio: 0.0, Readability: 1},
		{Artist: "A", Year: 1990, SwearRatio: 0.2, Readability: 1},
		{Artist: "B", Year: 1991, SwearRatio: 0.2, Readability: 10},
	}
	curve := StupidSongsCurve(songs)
	require.Len(t, curve, 26)

	// Threshold 0 includes everything: two of three are stupid.
	assert.InDelta(t, 200.0/3.0, curve[0].Percent, 1e-6)
	// Threshold 0.10 keeps the two high-ratio songs, one of them stupid.
	assert.InDelta(t, 50.0, curve[10].Percent, 1e-6)
	// Beyond every song's ratio nothing qualifies.
	assert.Zero(t, curve[25].Percent)
}
