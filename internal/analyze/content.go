package analyze

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/darkstats/metallyrics/internal/model"
)

// Lyrics-content metrics: how much profanity a song carries and how hard
// its text reads on the Coleman-Liau grade scale. Both only make sense for
// English lyrics, so every function here works on the English subset of the
// dataset.

// defaultSwearWords seeds the profanity list when no word file is
// configured. One lowercase word per entry, matched against whole tokens.
var defaultSwearWords = []string{
	"arse", "arsehole", "ass", "asshole", "bastard", "bitch", "bloody",
	"bollocks", "bullshit", "cock", "crap", "cunt", "damn", "dick",
	"douche", "fuck", "fucker", "fucking", "goddamn", "hell",
	"motherfucker", "piss", "prick", "pussy", "shit", "shitty", "slut",
	"twat", "wanker", "whore",
}

// LoadSwearWords reads a one-word-per-line profanity list, lowercased and
// with blank lines skipped. An empty path returns the built-in list.
func LoadSwearWords(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), defaultSwearWords...), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open swear word list %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read swear word list %s: %w", path, err)
	}
	return words, nil
}

// SongContent is the per-song content measurement.
type SongContent struct {
	Artist      string
	Year        int
	SwearRatio  float64
	Readability int
}

// ArtistContent averages song measurements per artist.
type ArtistContent struct {
	Artist         string
	AvgSwearRatio  float64
	AvgReadability float64
	Songs          int
}

// YearContent averages song measurements per release year.
type YearContent struct {
	Year           int
	AvgSwearRatio  float64
	AvgReadability float64
}

// CurvePoint is one threshold sample of the stupid-songs curve.
type CurvePoint struct {
	Threshold float64
	Percent   float64
}

// stupidReadabilityMax is the Coleman-Liau grade at or below which a song
// counts as "stupid" for the curve.
const stupidReadabilityMax = 3

// lyricsTokens lowercases the text and splits it into words, treating
// punctuation as separators.
func lyricsTokens(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(mapped)
}

func swearSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func tokenSwearRatio(tokens []string, set map[string]struct{}) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// SwearRatio returns the fraction of tokens in text that are swear words.
func SwearRatio(text string, swears []string) float64 {
	return tokenSwearRatio(lyricsTokens(text), swearSet(swears))
}

// ColemanLiau returns the Coleman-Liau grade of a text, clamped to >= 1.
// Lyrics rarely use sentence punctuation, so a text without any counts as
// one long sentence.
func ColemanLiau(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 1
	}
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters++
		}
	}
	sentences := 0
	terminal := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !terminal {
				sentences++
			}
			terminal = true
		default:
			terminal = false
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	l := float64(letters) / float64(len(words)) * 100
	s := float64(sentences) / float64(len(words)) * 100
	grade := 0.0588*l - 0.296*s - 15.8
	if grade < 1 {
		return 1
	}
	return int(grade)
}

// ContentSongs measures every English song with lyrics and a known release
// year, restricted to the topBands artists with the most qualifying songs.
// topBands <= 0 keeps every artist.
func ContentSongs(ds model.Dataset, minLen int, swears []string, topBands int) []SongContent {
	set := swearSet(swears)

	type record struct {
		artist string
		year   int
		lyrics string
	}
	var records []record
	perArtist := newCounter()
	for _, artist := range ds {
		for _, album := range artist.Albums {
			if album.ReleaseYear == 0 {
				continue
			}
			for _, song := range album.Songs {
				if !song.HasLyrics(minLen) || song.Language != "en" {
					continue
				}
				perArtist.add(artist.Name, 1)
				records = append(records, record{artist.Name, album.ReleaseYear, song.Lyrics})
			}
		}
	}

	keep := make(map[string]bool)
	if topBands > 0 {
		for _, lc := range TopN(perArtist.sorted(), topBands) {
			keep[lc.Label] = true
		}
	}

	out := make([]SongContent, 0, len(records))
	for _, rec := range records {
		if topBands > 0 && !keep[rec.artist] {
			continue
		}
		out = append(out, SongContent{
			Artist:      rec.artist,
			Year:        rec.year,
			SwearRatio:  tokenSwearRatio(lyricsTokens(rec.lyrics), set),
			Readability: ColemanLiau(rec.lyrics),
		})
	}
	return out
}

// ContentByArtist averages song measurements per artist, most-measured
// artists first; ties keep first-encountered order.
func ContentByArtist(songs []SongContent) []ArtistContent {
	type agg struct {
		swear float64
		read  float64
		n     int
	}
	byArtist := make(map[string]*agg)
	var order []string
	for _, sc := range songs {
		a, ok := byArtist[sc.Artist]
		if !ok {
			a = &agg{}
			byArtist[sc.Artist] = a
			order = append(order, sc.Artist)
		}
		a.swear += sc.SwearRatio
		a.read += float64(sc.Readability)
		a.n++
	}

	out := make([]ArtistContent, 0, len(order))
	for _, name := range order {
		a := byArtist[name]
		out = append(out, ArtistContent{
			Artist:         name,
			AvgSwearRatio:  a.swear / float64(a.n),
			AvgReadability: a.read / float64(a.n),
			Songs:          a.n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Songs > out[j].Songs })
	return out
}

// ContentByYear averages song measurements per release year, ascending.
func ContentByYear(songs []SongContent) []YearContent {
	type agg struct {
		swear float64
		read  float64
		n     int
	}
	byYear := make(map[int]*agg)
	for _, sc := range songs {
		a, ok := byYear[sc.Year]
		if !ok {
			a = &agg{}
			byYear[sc.Year] = a
		}
		a.swear += sc.SwearRatio
		a.read += float64(sc.Readability)
		a.n++
	}

	out := make([]YearContent, 0, len(byYear))
	for year, a := range byYear {
		out = append(out, YearContent{
			Year:           year,
			AvgSwearRatio:  a.swear / float64(a.n),
			AvgReadability: a.read / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// StupidSongsCurve samples thresholds from 0.00 to 0.25 in steps of 0.01.
// Each point is the percentage of songs at or above that swear ratio whose
// readability grade is at most stupidReadabilityMax; 0 when no song
// qualifies.
func StupidSongsCurve(songs []SongContent) []CurvePoint {
	out := make([]CurvePoint, 0, 26)
	for i := 0; i <= 25; i++ {
		threshold := float64(i) / 100
		total, stupid := 0, 0
		for _, sc := range songs {
			if sc.SwearRatio < threshold {
				continue
			}
			total++
			if sc.Readability <= stupidReadabilityMax {
				stupid++
			}
		}
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(stupid) / float64(total)
		}
		out = append(out, CurvePoint{Threshold: threshold, Percent: pct})
	}
	return out
}
