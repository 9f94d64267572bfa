// Package model defines the record types shared by the crawler and the
// analyzer: artists own albums, albums own songs. A Dataset is the JSON
// array written by one crawl run and read back by the analyzer.
package model

import "strings"

// Song is a single track with its lyrics, if the site had any.
type Song struct {
	Title   string `json:"title"`
	TrackNo int    `json:"track_number"`
	Lyrics  string `json:"lyrics"`
	// Language is the ISO 639-1 code detected from the lyrics,
	// empty when the song has no lyrics or detection was inconclusive.
	Language string `json:"language,omitempty"`
}

// Album groups the songs of one release.
type Album struct {
	Title string `json:"title"`
	// Type is the raw publication label scraped from the site
	// ("album", "ep", "demo", ...); classification happens at analysis time.
	Type string `json:"type,omitempty"`
	// ReleaseYear is 0 when the site did not print a year.
	ReleaseYear int    `json:"release_year,omitempty"`
	Songs       []Song `json:"songs"`
}

// Artist is one band as discovered in the site index, immutable once scraped.
type Artist struct {
	Name   string  `json:"name"`
	URL    string  `json:"url"`
	Albums []Album `json:"albums"`
}

// Dataset is the ordered sequence of artists produced by one quarter's crawl.
// Order is the index position order, which makes resumed runs and quarter
// concatenation deterministic.
type Dataset []Artist

// HasLyrics reports whether the song carries usable lyrics. Whitespace-only
// bodies and fragments shorter than minLen do not count.
func (s Song) HasLyrics(minLen int) bool {
	return len(strings.TrimSpace(s.Lyrics)) >= minLen
}

// Counts returns the number of artists, albums and songs in the dataset.
func (d Dataset) Counts() (artists, albums, songs int) {
	artists = len(d)
	for _, a := range d {
		albums += len(a.Albums)
		for _, al := range a.Albums {
			songs += len(al.Songs)
		}
	}
	return artists, albums, songs
}

// EachSong calls fn for every song together with its owning artist and album.
func (d Dataset) EachSong(fn func(artist Artist, album Album, song Song)) {
	for _, a := range d {
		for _, al := range a.Albums {
			for _, s := range al.Songs {
				fn(a, al, s)
			}
		}
	}
}
