// Package darklyrics fetches and parses DarkLyrics pages into typed records.
//
// The site has three page shapes we care about: the per-letter artist index,
// the per-artist album listing, and the per-album lyrics page. Parsing
// converts raw markup into typed records up front and fails fast on pages
// that do not match the expected structure, so malformed markup never
// propagates into the dataset.
package darklyrics

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ArtistRef is one entry of the site index.
type ArtistRef struct {
	Name string
	URL  string
}

// SongRef is one track listed on an artist page.
type SongRef struct {
	Title   string
	TrackNo int
}

// AlbumRef is one release block from an artist page. LyricsURL points at the
// album's lyrics page, which holds the text for all of its songs.
type AlbumRef struct {
	Title       string
	Type        string
	ReleaseYear int
	LyricsURL   string
	Songs       []SongRef
}

// Album headers look like `album: "Ride the Lightning" (1984)`; the year is
// sometimes missing.
var albumHeader = regexp.MustCompile(`^\s*([^:]+):\s*"(.+)"(?:\s*\((\d{4})\))?`)

// ParseArtistIndex extracts (name, URL) pairs from a letter index page.
// Relative links are resolved against base. A page with an artists block but
// no entries parses to an empty slice; a page without the block is an error.
func ParseArtistIndex(body []byte, base *url.URL) ([]ArtistRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse index html: %w", err)
	}
	block := doc.Find("div.artists")
	if block.Length() == 0 {
		return nil, fmt.Errorf("no artist index block in page")
	}

	var refs []ArtistRef
	block.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		if name == "" || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		refs = append(refs, ArtistRef{Name: name, URL: resolved.String()})
	})
	return refs, nil
}

// ParseArtistPage extracts the album blocks from an artist page. Song links
// carry the album lyrics page URL plus a fragment with the track number,
// e.g. ../lyrics/metallica/ridethelightning.html#4.
func ParseArtistPage(body []byte, pageURL *url.URL) ([]AlbumRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse artist html: %w", err)
	}
	blocks := doc.Find("div.album")
	if blocks.Length() == 0 {
		return nil, fmt.Errorf("no album blocks in artist page")
	}

	var albums []AlbumRef
	blocks.Each(func(_ int, block *goquery.Selection) {
		album := AlbumRef{}
		header := strings.TrimSpace(block.Find("h2").First().Text())
		if m := albumHeader.FindStringSubmatch(header); m != nil {
			album.Type = strings.ToLower(strings.TrimSpace(m[1]))
			album.Title = m[2]
			if m[3] != "" {
				album.ReleaseYear, _ = strconv.Atoi(m[3])
			}
		} else {
			album.Title = strings.Trim(header, `" `)
		}

		block.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if !strings.Contains(href, "#") {
				return
			}
			resolved, err := pageURL.Parse(href)
			if err != nil {
				return
			}
			trackNo, err := strconv.Atoi(resolved.Fragment)
			if err != nil {
				return
			}
			title := strings.TrimSpace(link.Text())
			if title == "" {
				return
			}
			if album.LyricsURL == "" {
				noFragment := *resolved
				noFragment.Fragment = ""
				album.LyricsURL = noFragment.String()
			}
			album.Songs = append(album.Songs, SongRef{Title: title, TrackNo: trackNo})
		})

		if album.Title != "" {
			albums = append(albums, album)
		}
	})
	if len(albums) == 0 {
		return nil, fmt.Errorf("artist page yielded no albums")
	}
	return albums, nil
}

// ParseAlbumLyrics splits an album lyrics page into per-track texts keyed by
// track number. Track headings are h3 elements carrying a named anchor; the
// text between one heading and the next is that track's lyrics. Trailing
// blocks (thanks, notes) end collection.
func ParseAlbumLyrics(body []byte) (map[int]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse lyrics html: %w", err)
	}
	container := doc.Find("div.lyrics").First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("no lyrics block in page")
	}

	lyrics := make(map[int]string)
	current := 0
	var buf strings.Builder
	flush := func() {
		if current > 0 {
			lyrics[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	container.Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		switch {
		case node.Type == html.ElementNode && node.Data == "h3":
			flush()
			current = 0
			if name, ok := s.Find("a[name]").Attr("name"); ok {
				if n, err := strconv.Atoi(name); err == nil {
					current = n
				}
			}
		case node.Type == html.ElementNode && node.Data == "div":
			// Thanks/notes footer; everything after it is not lyrics.
			flush()
			current = 0
		case current > 0:
			buf.WriteString(s.Text())
		}
	})
	flush()
	return lyrics, nil
}
