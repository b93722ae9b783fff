// Package records holds the normalized in-memory table the dashboard
// serves between cache windows.  The feed arrives as raw text cells in a
// fixed 11-column layout; normalization coerces coordinates and counts,
// drops rows that cannot be placed on the map, and guarantees that every
// surviving text field is a plain string so downstream filtering never
// has to reason about missing values.
package records

import (
	"math"
	"strconv"
	"strings"
)

// Columns is the fixed header schema of the persisted sheet, in column
// order.  Cell addressing elsewhere in the program is derived from the
// position of a name in this slice, so the order must match the sheet
// layout exactly.
var Columns = []string{
	"Address",
	"Dog Name",
	"District",
	"Latitude",
	"Longitude",
	"Number of dogs",
	"Filter",
	"Today",
	"Group",
	"Dog ID",
	"New Assignment",
}

// Positions of the coordinate and count cells inside a raw row.
const (
	colAddress = iota
	colDogName
	colDistrict
	colLatitude
	colLongitude
	colDogs
	colFilter
	colToday
	colGroup
	colDogID
	colAssignment
)

// defaultDogs is substituted when the count cell does not parse.
const defaultDogs = 1

// Record is one normalized row of the sheet.  FeedRow is the zero-based
// position of the row among the raw data rows (header excluded); it
// survives normalization so an edit can address the original sheet row
// even after invalid neighbours have been dropped.
type Record struct {
	FeedRow    int     `json:"row"`
	Address    string  `json:"address"`
	DogName    string  `json:"dogName"`
	District   string  `json:"district"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	Dogs       int     `json:"dogs"`
	Filter     string  `json:"filter"`
	Today      string  `json:"today"`
	Group      string  `json:"group"`
	DogID      string  `json:"dogID"`
	Assignment string  `json:"assignment"`
}

// Table is the ordered, normalized view of the feed for one cache window.
type Table []Record

// FromFeed normalizes a raw feed into a Table.  The first row is the
// header and is skipped; every following row is mapped positionally onto
// the fixed schema.  Rows are processed in order and the steps build on
// each other: pad first, then reject unmappable rows, then coerce.
func FromFeed(feed [][]string) Table {
	if len(feed) < 2 {
		return nil
	}
	table := make(Table, 0, len(feed)-1)
	for i, raw := range feed[1:] {
		rec, ok := normalizeRow(i, raw)
		if !ok {
			continue
		}
		table = append(table, rec)
	}
	return table
}

// normalizeRow turns one raw row into a Record.  ok is false when the
// row cannot be displayed on the map; that is a per-row recovery, never
// an error for the whole feed.
func normalizeRow(feedRow int, raw []string) (Record, bool) {
	cells := make([]string, len(Columns))
	for i := range cells {
		if i < len(raw) {
			cells[i] = strings.TrimSpace(raw[i])
		}
	}

	if cells[colAddress] == "" {
		return Record{}, false
	}

	lat, ok := parseCoordinate(cells[colLatitude])
	if !ok {
		return Record{}, false
	}
	lon, ok := parseCoordinate(cells[colLongitude])
	if !ok {
		return Record{}, false
	}

	dogs, err := strconv.Atoi(cells[colDogs])
	if err != nil || dogs < 0 {
		dogs = defaultDogs
	}

	return Record{
		FeedRow:    feedRow,
		Address:    cells[colAddress],
		DogName:    cells[colDogName],
		District:   cells[colDistrict],
		Latitude:   lat,
		Longitude:  lon,
		Dogs:       dogs,
		Filter:     cells[colFilter],
		Today:      cells[colToday],
		Group:      cells[colGroup],
		DogID:      cells[colDogID],
		Assignment: cells[colAssignment],
	}, true
}

// parseCoordinate accepts only coordinates that place a marker somewhere
// real: the cell must be non-empty, not the literal "0", and must parse
// to a non-zero finite float.  The textual "0" check comes first because
// the sheet stores unset coordinates as "0" rather than blank.
func parseCoordinate(cell string) (float64, bool) {
	if cell == "" || cell == "0" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CategoryValue returns the record's cell for a color-by field.  Counts
// are rendered as their decimal text so every category is a string key.
func (r Record) CategoryValue(field string) string {
	switch field {
	case "District":
		return r.District
	case "Number of dogs":
		return strconv.Itoa(r.Dogs)
	default:
		return r.Filter
	}
}

// DistinctValues lists the distinct values of a color-by field in
// first-seen order.  The color assigner depends on this order being
// stable for a fixed table.
func (t Table) DistinctValues(field string) []string {
	seen := make(map[string]bool, len(t))
	var values []string
	for _, rec := range t {
		v := rec.CategoryValue(field)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

// Stats summarises the table for the dashboard footer.
type Stats struct {
	Locations int `json:"locations"`
	Dogs      int `json:"dogs"`
	Districts int `json:"districts"`
}

// Stats counts locations, total dogs and distinct districts.
func (t Table) Stats() Stats {
	districts := make(map[string]bool)
	s := Stats{Locations: len(t)}
	for _, rec := range t {
		s.Dogs += rec.Dogs
		if rec.District != "" {
			districts[rec.District] = true
		}
	}
	s.Districts = len(districts)
	return s
}
