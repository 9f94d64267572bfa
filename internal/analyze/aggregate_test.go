package analyze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkstats/metallyrics/internal/model"
)

// songs builds n songs with the given lyrics body each.
func songs(n int, lyrics string) []model.Song {
	out := make([]model.Song, n)
	for i := range out {
		out[i] = model.Song{Title: fmt.Sprintf("Track %d", i+1), TrackNo: i + 1, Lyrics: lyrics}
	}
	return out
}

func TestSplitByLyrics(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{{
		Name: "Mournfall",
		Albums: []model.Album{{
			Title: "Embers",
			Songs: []model.Song{
				{Title: "A", Lyrics: "seven words of perfectly fine lyrics"},
				{Title: "B", Lyrics: "more words that count as lyrics"},
				{Title: "C", Lyrics: "still lyrical content here"},
				{Title: "D", Lyrics: "yet another lyrical body"},
				{Title: "E", Lyrics: "words enough"},
				{Title: "F", Lyrics: "fine body"},
				{Title: "G", Lyrics: "also ok"},
				{Title: "H", Lyrics: ""},            // instrumental
				{Title: "I", Lyrics: "   \n\t  "},   // whitespace only
				{Title: "J", Lyrics: "la"},          // under the threshold
			},
		}},
	}}

	split := SplitByLyrics(ds, 5)
	assert.Equal(t, 7, split.With)
	assert.Equal(t, 3, split.Without)
}

func TestPublicationTypes(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{{
		Name: "Mournfall",
		Albums: []model.Album{
			{Title: "One", Type: "album"},
			{Title: "Two", Type: "Album"},
			{Title: "Three", Type: "demo"},
			{Title: "Four", Type: "live album"},
			{Title: "Five", Type: "split 7\""},
			{Title: "Six", Type: ""},
		},
	}}

	got := PublicationTypes(ds)
	counts := make(map[string]int)
	for _, lc := range got {
		counts[lc.Label] = lc.Count
	}
	assert.Equal(t, 2, counts[PubAlbum])
	assert.Equal(t, 1, counts[PubDemo])
	assert.Equal(t, 1, counts[PubLive])
	assert.Equal(t, 2, counts[PubOther])
	// Descending order, largest bucket first.
	assert.Equal(t, 2, got[0].Count)
}

func TestTopArtistsBySongsTieBreakAndCap(t *testing.T) {
	t.Parallel()

	var ds model.Dataset
	// Twelve artists, all with 3 songs except the last two with 5.
	for i := 0; i < 12; i++ {
		n := 3
		if i >= 10 {
			n = 5
		}
		ds = append(ds, model.Artist{
			Name:   fmt.Sprintf("Band %02d", i),
			Albums: []model.Album{{Title: "Only", Songs: songs(n, "words")}},
		})
	}

	got := TopArtistsBySongs(ds, 10)
	require.Len(t, got, 10)
	assert.Equal(t, "Band 10", got[0].Label)
	assert.Equal(t, "Band 11", got[1].Label)
	// Ties keep dataset order.
	for i := 2; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("Band %02d", i-2), got[i].Label)
		assert.Equal(t, 3, got[i].Count)
	}
}

func TestTopArtistsByAlbums(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{
		{Name: "A", Albums: []model.Album{{Title: "1"}, {Title: "2"}}},
		{Name: "B", Albums: []model.Album{{Title: "1"}}},
		{Name: "C", Albums: []model.Album{{Title: "1"}, {Title: "2"}, {Title: "3"}}},
	}

	got := TopArtistsByAlbums(ds, 2)
	require.Len(t, got, 2)
	assert.Equal(t, LabelCount{Label: "C", Count: 3}, got[0])
	assert.Equal(t, LabelCount{Label: "A", Count: 2}, got[1])
}

func TestSongsByYearSortedAndUnknownExcluded(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{{
		Name: "Mournfall",
		Albums: []model.Album{
			{Title: "New", ReleaseYear: 2003, Songs: songs(4, "w")},
			{Title: "Old", ReleaseYear: 1991, Songs: songs(2, "w")},
			{Title: "Mystery", ReleaseYear: 0, Songs: songs(9, "w")},
			{Title: "Older", ReleaseYear: 1991, Songs: songs(1, "w")},
		},
	}}

	got := SongsByYear(ds)
	require.Len(t, got, 2)
	assert.Equal(t, YearCount{Year: 1991, Count: 3}, got[0])
	assert.Equal(t, YearCount{Year: 2003, Count: 4}, got[1])
}

func langDataset() model.Dataset {
	album := model.Album{Title: "Only"}
	add := func(code string, n int) {
		for i := 0; i < n; i++ {
			album.Songs = append(album.Songs, model.Song{
				Title:    fmt.Sprintf("%s %d", code, i),
				Lyrics:   "long enough lyrics body",
				Language: code,
			})
		}
	}
	add("en", 8)
	add("fr", 4)
	add("de", 2)
	add("es", 1)
	add("it", 1)
	return model.Dataset{{Name: "Various", Albums: []model.Album{album}}}
}

func TestLanguageCountsUsesStoredCodes(t *testing.T) {
	t.Parallel()

	got := LanguageCounts(langDataset(), 5, nil)
	require.Len(t, got, 5)
	assert.Equal(t, LabelCount{Label: "English", Count: 8}, got[0])
	assert.Equal(t, LabelCount{Label: "French", Count: 4}, got[1])
	assert.Equal(t, LabelCount{Label: "German", Count: 2}, got[2])
}

func TestLanguageCountsDetectsMissingCodes(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{{
		Name: "Mournfall",
		Albums: []model.Album{{
			Title: "Embers",
			Songs: []model.Song{
				{Title: "A", Lyrics: "plenty of words here"},
				{Title: "B", Lyrics: "short"},
				{Title: "C", Lyrics: ""},
				{Title: "D", Lyrics: "stored wins", Language: "fr"},
			},
		}},
	}}

	calls := 0
	detect := func(string) (string, bool) {
		calls++
		return "en", true
	}

	got := LanguageCounts(ds, 5, detect)
	counts := make(map[string]int)
	for _, lc := range got {
		counts[lc.Label] = lc.Count
	}
	assert.Equal(t, 2, counts["English"])
	assert.Equal(t, 1, counts["French"])
	// Only the two codeless songs with lyrics hit the detector.
	assert.Equal(t, 2, calls)
}

func TestTopWithOtherCapsTotalSlices(t *testing.T) {
	t.Parallel()

	// Five languages capped at four slices: three named plus Other.
	got := TopWithOther(LanguageCounts(langDataset(), 5, nil), 4, "Other Languages")
	assert.Equal(t, []LabelCount{
		{Label: "English", Count: 8},
		{Label: "French", Count: 4},
		{Label: "German", Count: 2},
		{Label: "Other Languages", Count: 2},
	}, got)

	// Exactly n buckets: unchanged, no Other bucket.
	four := []LabelCount{
		{Label: "English", Count: 8},
		{Label: "French", Count: 4},
		{Label: "German", Count: 2},
		{Label: "Spanish", Count: 1},
	}
	assert.Equal(t, four, TopWithOther(four, 4, "Other Languages"))

	// Fewer buckets than n: unchanged, no empty Other bucket.
	small := []LabelCount{{Label: "English", Count: 3}}
	assert.Equal(t, small, TopWithOther(small, 4, "Other Languages"))
}

func TestTopN(t *testing.T) {
	t.Parallel()

	counts := []LabelCount{{Label: "a", Count: 3}, {Label: "b", Count: 2}, {Label: "c", Count: 1}}
	assert.Len(t, TopN(counts, 2), 2)
	assert.Len(t, TopN(counts, 20), 3)
}
