package records

import (
	"reflect"
	"testing"
)

func feedWith(rows ...[]string) [][]string {
	feed := [][]string{Columns}
	return append(feed, rows...)
}

// TestFromFeedWorkedExample follows one well-formed row through the whole
// pipeline: coordinates coerced, count parsed, feed position retained.
func TestFromFeedWorkedExample(t *testing.T) {
	feed := feedWith(
		[]string{"123 Main St", "Fido", "North", "40.7", "-74.0", "2", "A", "", "", " ", "1"},
	)
	table := FromFeed(feed)
	if len(table) != 1 {
		t.Fatalf("FromFeed returned %d records, want 1", len(table))
	}
	rec := table[0]
	if rec.Latitude != 40.7 || rec.Longitude != -74.0 {
		t.Errorf("coordinates = (%v, %v), want (40.7, -74.0)", rec.Latitude, rec.Longitude)
	}
	if rec.Dogs != 2 {
		t.Errorf("Dogs = %d, want 2", rec.Dogs)
	}
	if rec.FeedRow != 0 {
		t.Errorf("FeedRow = %d, want 0", rec.FeedRow)
	}
	if rec.Group != "" {
		t.Errorf("Group = %q, want empty after trimming", rec.Group)
	}
}

// TestFromFeedDropsUnmappableRows covers every reason a row may be
// excluded from the map: missing address, blank or "0" coordinates,
// unparseable coordinates, and coordinates that parse to zero anyway.
func TestFromFeedDropsUnmappableRows(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{"empty address", []string{"  ", "Rex", "North", "40.7", "-74.0", "1"}},
		{"blank latitude", []string{"1 Elm St", "Rex", "North", "", "-74.0", "1"}},
		{"literal zero longitude", []string{"1 Elm St", "Rex", "North", "40.7", "0", "1"}},
		{"unparseable latitude", []string{"1 Elm St", "Rex", "North", "forty", "-74.0", "1"}},
		{"zero-valued latitude", []string{"1 Elm St", "Rex", "North", "0.0", "-74.0", "1"}},
	}
	for _, tc := range tests {
		if table := FromFeed(feedWith(tc.row)); len(table) != 0 {
			t.Errorf("%s: row survived normalization: %+v", tc.name, table[0])
		}
	}
}

// TestFromFeedKeepsFeedPositions ensures dropped rows do not shift the
// feed positions of their survivors; edits address the original sheet
// rows through these positions.
func TestFromFeedKeepsFeedPositions(t *testing.T) {
	feed := feedWith(
		[]string{"1 Elm St", "Rex", "North", "40.7", "-74.0", "1"},
		[]string{"", "dropped", "", "", "", ""},
		[]string{"2 Oak St", "Bella", "South", "41.1", "-73.9", "3"},
	)
	table := FromFeed(feed)
	if len(table) != 2 {
		t.Fatalf("FromFeed returned %d records, want 2", len(table))
	}
	if table[0].FeedRow != 0 || table[1].FeedRow != 2 {
		t.Errorf("feed rows = %d, %d; want 0, 2", table[0].FeedRow, table[1].FeedRow)
	}
}

// TestFromFeedCountDefaults verifies the count column never drops a row:
// bad or negative values fall back to one dog.
func TestFromFeedCountDefaults(t *testing.T) {
	tests := []struct {
		cell string
		want int
	}{
		{"", 1},
		{"three", 1},
		{"-2", 1},
		{"4", 4},
		{"0", 0},
	}
	for _, tc := range tests {
		feed := feedWith([]string{"1 Elm St", "Rex", "North", "40.7", "-74.0", tc.cell})
		table := FromFeed(feed)
		if len(table) != 1 {
			t.Fatalf("count %q: row was dropped", tc.cell)
		}
		if table[0].Dogs != tc.want {
			t.Errorf("count %q: Dogs = %d, want %d", tc.cell, table[0].Dogs, tc.want)
		}
	}
}

// TestFromFeedShortRows checks that rows shorter than the schema are
// padded with empty strings instead of panicking.
func TestFromFeedShortRows(t *testing.T) {
	feed := feedWith([]string{"1 Elm St", "Rex", "North", "40.7", "-74.0"})
	table := FromFeed(feed)
	if len(table) != 1 {
		t.Fatalf("short row was dropped")
	}
	if table[0].Dogs != 1 || table[0].Filter != "" || table[0].Assignment != "" {
		t.Errorf("short row not padded: %+v", table[0])
	}
}

// TestFromFeedEmptyFeed covers the no-data cases: nil feed and a feed
// that only carries the header.
func TestFromFeedEmptyFeed(t *testing.T) {
	if table := FromFeed(nil); len(table) != 0 {
		t.Errorf("FromFeed(nil) = %v, want empty", table)
	}
	if table := FromFeed([][]string{Columns}); len(table) != 0 {
		t.Errorf("FromFeed(header only) = %v, want empty", table)
	}
}

func TestDistinctValuesFirstSeenOrder(t *testing.T) {
	table := Table{
		{Filter: "B"},
		{Filter: "A"},
		{Filter: "B"},
		{Filter: "C"},
	}
	got := table.DistinctValues("Filter")
	want := []string{"B", "A", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctValues = %v, want %v", got, want)
	}
}

func TestCategoryValueNumberOfDogs(t *testing.T) {
	rec := Record{Dogs: 3, Filter: "A", District: "North"}
	if v := rec.CategoryValue("Number of dogs"); v != "3" {
		t.Errorf(`CategoryValue("Number of dogs") = %q, want "3"`, v)
	}
	if v := rec.CategoryValue("District"); v != "North" {
		t.Errorf(`CategoryValue("District") = %q, want "North"`, v)
	}
	if v := rec.CategoryValue("Filter"); v != "A" {
		t.Errorf(`CategoryValue("Filter") = %q, want "A"`, v)
	}
}

func TestStats(t *testing.T) {
	table := Table{
		{District: "North", Dogs: 2},
		{District: "South", Dogs: 1},
		{District: "North", Dogs: 3},
		{District: "", Dogs: 1},
	}
	got := table.Stats()
	want := Stats{Locations: 4, Dogs: 7, Districts: 2}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}
