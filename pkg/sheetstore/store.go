// Package sheetstore is the persisted-store collaborator: a tabular,
// spreadsheet-like backend that reads all rows as text and writes single
// cells by (row, column) address, both 1-indexed with the header at row
// one.  Backends are selected by name the same way the map database
// driver is picked elsewhere; the primary backend is the Google Sheet
// the dashboard was built around, with sqlite and PostgreSQL cell-grid
// mirrors for local and self-hosted deployments.
package sheetstore

import (
	"context"
	"fmt"
	"strings"
)

// Store exposes the two operations the dashboard needs from the
// persisted sheet.  Keeping the interface this small lets the edit
// dispatcher stay agnostic of which backend is live.
type Store interface {
	// Name identifies the backend for log lines.
	Name() string
	// ReadRows returns every row of the sheet as text cells, header
	// included.  Rows may be ragged; normalization pads them.
	ReadRows(ctx context.Context) ([][]string, error)
	// UpdateCell writes one cell.  Row and column are 1-indexed; row 1
	// is the header.
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// Importer is implemented by backends that can replace their whole grid
// at once; main uses it to seed a local snapshot from a CSV export.
// The Google Sheets backend deliberately does not implement it — the
// live sheet is the source of truth, not a mirror to overwrite.
type Importer interface {
	ImportFeed(ctx context.Context, feed [][]string) error
}

// Config carries everything any backend might need.  Unused fields are
// ignored by the backends that do not recognise them.
type Config struct {
	Backend string // "gsheets", "sqlite" or "pgx"

	// Google Sheets backend.
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string

	// SQL backends.
	DBPath    string // file path for sqlite
	DBConn    string // raw DSN for pgx; overrides the host/port fields
	DBHost    string
	DBPort    int
	DBUser    string
	DBPass    string
	DBName    string
	PGSSLMode string
}

// Open selects and initialises a backend.  Backend names are trimmed
// and lowercased so a stray capital in a flag value cannot bypass the
// switch.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "gsheets":
		return openGoogleSheets(ctx, cfg)
	case "sqlite", "pgx":
		return openSQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

// columnLetter converts a 1-indexed column number to its A1-notation
// letters (1 → A, 26 → Z, 27 → AA).
func columnLetter(col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}
