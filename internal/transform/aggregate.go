package transform

import (
	"slices"
	"strings"
	"time"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// dateLayouts are tried in order when ordering records by blog_date.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a legacy post date. Zero dates ("0000-00-00 00:00:00")
// and anything unrecognised report ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CombineAndSort transforms both sources (poesyliang.com first), concatenates
// them and orders the result oldest first by blog_date.
//
// Records whose date does not parse sort after every dated record. Equal
// dates keep their concatenation order.
func CombineAndSort(com, net []models.WpPost) []models.BlogPostWithSource {
	combined := make([]models.BlogPostWithSource, 0, len(com)+len(net))
	for _, p := range com {
		combined = append(combined, WpPost(p, models.OriginCom))
	}
	for _, p := range net {
		combined = append(combined, WpPost(p, models.OriginNet))
	}

	type dated struct {
		at time.Time
		ok bool
	}
	dates := make([]dated, len(combined))
	order := make([]int, len(combined))
	for i := range combined {
		at, ok := ParseDate(combined[i].BlogDate)
		dates[i] = dated{at, ok}
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		da, db := dates[a], dates[b]
		switch {
		case da.ok && db.ok:
			return da.at.Compare(db.at)
		case da.ok:
			return -1
		case db.ok:
			return 1
		}
		return 0
	})

	sorted := make([]models.BlogPostWithSource, len(combined))
	for i, idx := range order {
		sorted[i] = combined[idx]
	}
	return sorted
}
