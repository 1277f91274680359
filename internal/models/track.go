package models

import (
	"strconv"
	"time"
)

// DateLayout is the canonical release date format.
const DateLayout = "2006-01-02"

// Track is a raw track row as extracted from the catalog.
//
// An empty field means the source had no value for it.
type Track struct {
	TrackName   string `json:"track_name"`
	Artist      string `json:"artist"` // contributing artists joined with ", "
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	Popularity  string `json:"popularity"`
}

// RecordSet is an ordered sequence of raw tracks.
type RecordSet []Track

// CleanTrack is a normalized track row with every field present.
type CleanTrack struct {
	TrackName   string    `json:"track_name"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	ReleaseDate time.Time `json:"release_date"`
	Popularity  int       `json:"popularity"`
}

// Raw converts t back to its textual form.
func (t CleanTrack) Raw() Track {
	return Track{
		TrackName:   t.TrackName,
		Artist:      t.Artist,
		Album:       t.Album,
		ReleaseDate: t.ReleaseDate.Format(DateLayout),
		Popularity:  strconv.Itoa(t.Popularity),
	}
}

// Values returns the row's values in [TrackColumns] order.
func (t CleanTrack) Values() []any {
	return []any{t.TrackName, t.Artist, t.Album, t.ReleaseDate, t.Popularity}
}

// CleanRecordSet is an ordered sequence of normalized tracks.
type CleanRecordSet []CleanTrack

// Raw converts every row back to its textual form.
func (s CleanRecordSet) Raw() RecordSet {
	raw := make(RecordSet, len(s))
	for i, t := range s {
		raw[i] = t.Raw()
	}
	return raw
}

// ColumnKind is the naive type of a destination column.
type ColumnKind string

const (
	KindText   ColumnKind = "text"
	KindDate   ColumnKind = "date"
	KindNumber ColumnKind = "number"
)

// Column describes one destination column.
type Column struct {
	Name string
	Kind ColumnKind
}

// TrackColumns is the destination schema for a [CleanRecordSet], in [CleanTrack.Values] order.
var TrackColumns = []Column{
	{Name: "TrackName", Kind: KindText},
	{Name: "Artist", Kind: KindText},
	{Name: "Album", Kind: KindText},
	{Name: "ReleaseDate", Kind: KindDate},
	{Name: "Popularity", Kind: KindNumber},
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
