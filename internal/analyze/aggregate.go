// Package analyze loads crawled datasets, computes descriptive aggregates
// and renders them as charts. Every aggregation is a pure function of the
// merged in-memory dataset; no chart depends on another's output.
package analyze

import (
	"sort"

	"github.com/darkstats/metallyrics/internal/lang"
	"github.com/darkstats/metallyrics/internal/model"
)

// LabelCount is one labeled bucket of an aggregation.
type LabelCount struct {
	Label string
	Count int
}

// YearCount is one release-year bucket.
type YearCount struct {
	Year  int
	Count int
}

// LyricsSplit counts songs with and without usable lyrics.
type LyricsSplit struct {
	With    int
	Without int
}

// counter accumulates label counts while remembering first-encountered
// order, which breaks ties deterministically.
type counter struct {
	counts map[string]int
	order  map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int), order: make(map[string]int)}
}

func (c *counter) add(label string, n int) {
	if _, seen := c.counts[label]; !seen {
		c.order[label] = len(c.order)
	}
	c.counts[label] += n
}

// sorted returns buckets in descending count order; ties keep
// first-encountered order.
func (c *counter) sorted() []LabelCount {
	out := make([]LabelCount, 0, len(c.counts))
	for label, count := range c.counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return c.order[out[i].Label] < c.order[out[j].Label]
	})
	return out
}

// SplitByLyrics counts songs with vs without lyrics. minLen is the minimum
// trimmed length for lyrics to count.
func SplitByLyrics(ds model.Dataset, minLen int) LyricsSplit {
	var split LyricsSplit
	ds.EachSong(func(_ model.Artist, _ model.Album, song model.Song) {
		if song.HasLyrics(minLen) {
			split.With++
		} else {
			split.Without++
		}
	})
	return split
}

// PublicationTypes counts albums per classified publication type.
func PublicationTypes(ds model.Dataset) []LabelCount {
	c := newCounter()
	for _, artist := range ds {
		for _, album := range artist.Albums {
			c.add(ClassifyPublication(album.Type), 1)
		}
	}
	return c.sorted()
}

// TopArtistsBySongs ranks artists by song count, descending, capped at n.
// Ties rank the earlier-encountered artist higher.
func TopArtistsBySongs(ds model.Dataset, n int) []LabelCount {
	c := newCounter()
	for _, artist := range ds {
		songs := 0
		for _, album := range artist.Albums {
			songs += len(album.Songs)
		}
		c.add(artist.Name, songs)
	}
	return TopN(c.sorted(), n)
}

// TopArtistsByAlbums ranks artists by album count, descending, capped at n.
func TopArtistsByAlbums(ds model.Dataset, n int) []LabelCount {
	c := newCounter()
	for _, artist := range ds {
		c.add(artist.Name, len(artist.Albums))
	}
	return TopN(c.sorted(), n)
}

// SongsByYear buckets song counts by album release year, ascending. Songs
// on albums without a known year are excluded.
func SongsByYear(ds model.Dataset) []YearCount {
	counts := make(map[int]int)
	for _, artist := range ds {
		for _, album := range artist.Albums {
			if album.ReleaseYear == 0 {
				continue
			}
			counts[album.ReleaseYear] += len(album.Songs)
		}
	}
	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// LanguageCounts counts songs per detected language display name, over
// songs with lyrics only. Songs whose stored code is empty are detected on
// the fly via detect; songs that still have no confident language fall out
// of the denominator entirely.
func LanguageCounts(ds model.Dataset, minLen int, detect lang.DetectFunc) []LabelCount {
	c := newCounter()
	ds.EachSong(func(_ model.Artist, _ model.Album, song model.Song) {
		if !song.HasLyrics(minLen) {
			return
		}
		code := song.Language
		if code == "" && detect != nil {
			detected, ok := detect(song.Lyrics)
			if !ok {
				return
			}
			code = detected
		}
		if code == "" {
			return
		}
		c.add(lang.Name(code), 1)
	})
	return c.sorted()
}

// TopWithOther caps a sorted bucket list at n slices total. When the input
// fits it is returned unchanged; otherwise the first n-1 buckets are kept
// and everything else folds into a final bucket labeled otherLabel, so the
// result never exceeds n slices.
func TopWithOther(counts []LabelCount, n int, otherLabel string) []LabelCount {
	if len(counts) <= n {
		return counts
	}
	keep := n - 1
	if keep < 0 {
		keep = 0
	}
	out := make([]LabelCount, keep, n)
	copy(out, counts[:keep])
	other := 0
	for _, lc := range counts[keep:] {
		other += lc.Count
	}
	return append(out, LabelCount{Label: otherLabel, Count: other})
}

// TopN truncates a sorted bucket list to at most n entries.
func TopN(counts []LabelCount, n int) []LabelCount {
	if len(counts) <= n {
		return counts
	}
	return counts[:n]
}

// Total sums the counts of a bucket list.
func Total(counts []LabelCount) int {
	total := 0
	for _, lc := range counts {
		total += lc.Count
	}
	return total
}
