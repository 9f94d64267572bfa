// Package crawl implements the sequential quarter crawl with resumable
// checkpoints.
package crawl

import (
	"fmt"
	"strings"

	"github.com/darkstats/metallyrics/internal/darklyrics"
)

// users maps team member names to their assigned quarter.
var users = map[string]int{
	"florent": 1,
	"nizar":   2,
	"mathis":  3,
	"rayen":   4,
}

// QuarterForUser resolves a team member name to their quarter number.
func QuarterForUser(name string) (int, error) {
	q, ok := users[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		valid := []string{"florent", "nizar", "mathis", "rayen"}
		return 0, fmt.Errorf("unknown user %q, valid users: %s", name, strings.Join(valid, ", "))
	}
	return q, nil
}

// Partition slices the full artist index into n contiguous parts by position
// and returns part q (1-based). Parts are disjoint and their concatenation
// in order equals the input; the last part absorbs the remainder so no
// artist is ever dropped.
func Partition(refs []darklyrics.ArtistRef, q, n int) ([]darklyrics.ArtistRef, error) {
	if n <= 0 {
		return nil, fmt.Errorf("partition count must be > 0, got %d", n)
	}
	if q < 1 || q > n {
		return nil, fmt.Errorf("quarter must be in [1,%d], got %d", n, q)
	}
	size := len(refs) / n
	start := size * (q - 1)
	end := size * q
	if q == n {
		end = len(refs)
	}
	return refs[start:end], nil
}
