// Package dispatch writes form edits back to the persisted sheet.  Each
// recognised field maps to a fixed 1-indexed column; the target row is
// the record's feed position plus a fixed offset for the header row and
// the sheet's 1-based addressing.  Fields are written one cell at a
// time with no rollback, so a partial write is a possible, visible
// outcome — the caller gets the count of cells that made it.
package dispatch

import (
	"context"
	"errors"
	"sort"

	"dog-walking-map/pkg/sheetstore"
)

// ColumnIndex is the fixed field-to-column mapping of the persisted
// sheet (1-indexed).  It is an explicit table rather than something
// inferred from a header read, because it encodes the layout existing
// sheets already have.
var ColumnIndex = map[string]int{
	"Address":        1,
	"Dog Name":       2,
	"District":       3,
	"Latitude":       4,
	"Longitude":      5,
	"Number of dogs": 6,
	"Filter":         7,
	"Today":          8,
	"Group":          9,
	"Dog ID":         10,
	"New Assignment": 11,
}

// rowOffset converts a zero-based feed row into a sheet row: one for
// the header row, one for 1-based addressing.  Fixed by the persisted
// format; do not derive it.
const rowOffset = 2

// ErrNoStore is returned when an edit arrives while no store handle is
// available (the last load failed).  No write is attempted.
var ErrNoStore = errors.New("no store handle: sheet is not connected")

// Request is one form submission: the record's zero-based feed row and
// the field values to write.
type Request struct {
	Row    int
	Fields map[string]string
}

// Apply writes each recognised field of the request to the store and
// returns how many cells were written.  Unrecognised field names are
// skipped silently; individual write failures are logged through logf
// and reduce the count instead of failing the whole request.  Only a
// nil store is an error.
func Apply(ctx context.Context, store sheetstore.Store, req Request, logf func(string, ...any)) (int, error) {
	if store == nil {
		return 0, ErrNoStore
	}
	if req.Row < 0 {
		return 0, errors.New("negative row index")
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// Sorted field order keeps log output and partial-write behaviour
	// reproducible across submissions of the same form.
	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	sheetRow := req.Row + rowOffset
	for _, name := range names {
		col, ok := ColumnIndex[name]
		if !ok {
			logf("skip unknown field %q", name)
			continue
		}
		if err := store.UpdateCell(ctx, sheetRow, col, req.Fields[name]); err != nil {
			logf("write %q to row %d col %d: %v", name, sheetRow, col, err)
			continue
		}
		logf("wrote %q to row %d col %d", name, sheetRow, col)
		written++
	}
	return written, nil
}
