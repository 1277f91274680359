// package transform normalizes extracted track records.
//
// [Transform] is a pure filter: it never fails and never performs I/O. Values that cannot
// be parsed count as missing, and any record with a missing value is dropped.
package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tracketl/internal/models"
)

// Release dates arrive at day, month or year precision.
var dateLayouts = []string{
	models.DateLayout,
	"2006-01",
	"2006",
}

// ParseReleaseDate parses a release date at day, month or year precision, or an RFC 3339 timestamp.
//
// Partial dates resolve to the first day of the period. The boolean is false when s is not a date.
func ParseReleaseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		// len check rejects "2020-1" matching "2006-01" loosely
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// ParsePopularity coerces s to an integer score.
//
// Integral decimals such as "50.0" are accepted; fractional, non-finite or non-numeric values are not.
func ParsePopularity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

type dedupeKey struct {
	trackName string
	artist    string
}

// Transform parses release dates and popularity, removes later duplicates of (TrackName, Artist),
// then removes every record with a missing field.
//
// The result is a subsequence of raw in the original order.
func Transform(raw models.RecordSet) models.CleanRecordSet {
	clean := make(models.CleanRecordSet, 0, len(raw))
	seen := make(map[dedupeKey]struct{}, len(raw))

	for _, t := range raw {
		key := dedupeKey{trackName: t.TrackName, artist: t.Artist}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ct, ok := normalize(t)
		if !ok {
			continue
		}
		clean = append(clean, ct)
	}

	return clean
}

// normalize converts t, reporting false when any field is missing.
func normalize(t models.Track) (models.CleanTrack, bool) {
	if t.TrackName == "" || t.Artist == "" || t.Album == "" {
		return models.CleanTrack{}, false
	}

	released, ok := ParseReleaseDate(t.ReleaseDate)
	if !ok {
		return models.CleanTrack{}, false
	}

	popularity, ok := ParsePopularity(t.Popularity)
	if !ok {
		return models.CleanTrack{}, false
	}

	return models.CleanTrack{
		TrackName:   t.TrackName,
		Artist:      t.Artist,
		Album:       t.Album,
		ReleaseDate: released,
		Popularity:  popularity,
	}, true
}
