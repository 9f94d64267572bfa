package analyze

import "strings"

// Publication type labels used by the album-type breakdown.
const (
	PubAlbum       = "Album"
	PubEP          = "EP"
	PubSingle      = "Single"
	PubDemo        = "Demo"
	PubLive        = "Live"
	PubCompilation = "Compilation"
	PubOther       = "Other"
)

// ClassifyPublication maps the raw album-header type string onto a fixed
// label set. Matching is case-insensitive and tolerates site phrasing such
// as "full-length" for studio albums or "best of" for compilations.
func ClassifyPublication(raw string) string {
	norm := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case norm == "":
		return PubOther
	case strings.HasPrefix(norm, "album") || strings.Contains(norm, "full-length"):
		return PubAlbum
	case strings.HasPrefix(norm, "ep"):
		return PubEP
	case strings.HasPrefix(norm, "single"):
		return PubSingle
	case strings.HasPrefix(norm, "demo"):
		return PubDemo
	case strings.Contains(norm, "live"):
		return PubLive
	case strings.Contains(norm, "compilation") || strings.Contains(norm, "best of"):
		return PubCompilation
	default:
		return PubOther
	}
}
