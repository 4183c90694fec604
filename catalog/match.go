package catalog

import (
	"strings"

	"github.com/hupe1980/simili/model"
)

// Match returns the tracks whose title or artist contains q, ignoring case.
// Catalog order is preserved. An empty or blank query matches nothing.
// limit <= 0 means no limit.
func Match(tracks []model.Track, q string, limit int) []model.Track {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []model.Track{}
	}

	out := []model.Track{}
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Artist), q) {
			out = append(out, t)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
