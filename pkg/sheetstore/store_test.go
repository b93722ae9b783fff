package sheetstore

import (
	"reflect"
	"testing"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{11, "K"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tc := range tests {
		if got := columnLetter(tc.col); got != tc.want {
			t.Errorf("columnLetter(%d) = %q, want %q", tc.col, got, tc.want)
		}
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO sheet_cells (row_num, col_num, value) VALUES (?, ?, ?)"
	if got := rebind("sqlite", q); got != q {
		t.Errorf("rebind(sqlite) changed the query: %s", got)
	}
	want := "INSERT INTO sheet_cells (row_num, col_num, value) VALUES ($1, $2, $3)"
	if got := rebind("pgx", q); got != want {
		t.Errorf("rebind(pgx) = %s, want %s", got, want)
	}
}

// TestAssembleGrid checks that sparse cells come back as a dense sheet
// with blanks where no cell was stored.
func TestAssembleGrid(t *testing.T) {
	cells := []cell{
		{1, 1, "Address"},
		{1, 2, "Dog Name"},
		{2, 1, "1 Elm St"},
		{3, 2, "Bella"},
	}
	got := assembleGrid(cells, 3, 2)
	want := [][]string{
		{"Address", "Dog Name"},
		{"1 Elm St", ""},
		{"", "Bella"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assembleGrid = %v, want %v", got, want)
	}
	if assembleGrid(nil, 0, 0) != nil {
		t.Error("empty grid should be nil")
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"Fido", "Fido"},
		{40.7, "40.7"},
		{float64(2), "2"},
		{true, "true"},
		{nil, ""},
	}
	for _, tc := range tests {
		if got := cellText(tc.in); got != tc.want {
			t.Errorf("cellText(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := openSQL(Config{Backend: "oracle"}); err == nil {
		t.Fatal("openSQL(oracle) succeeded, want error")
	}
}
