package sheetstore

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// googleSheets talks to the live spreadsheet through the Sheets API.
// The service account behind CredentialsFile must have read/write access
// to the sheet; a failure to load credentials is fatal for the open and
// surfaces to the user, it is not retried here.
type googleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

func openGoogleSheets(ctx context.Context, cfg Config) (*googleSheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("gsheets: spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("gsheets: credentials: %w", err)
	}
	worksheet := cfg.Worksheet
	if worksheet == "" {
		worksheet = "Map"
	}
	return &googleSheets{svc: svc, spreadsheetID: cfg.SpreadsheetID, worksheet: worksheet}, nil
}

func (g *googleSheets) Name() string { return "gsheets:" + g.spreadsheetID }

// ReadRows fetches the whole worksheet in one call.  The API returns
// loosely typed cells; we render each to text because the normalizer
// only understands strings.
func (g *googleSheets) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gsheets: read %s: %w", g.worksheet, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, cellText(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateCell writes a single A1-addressed cell.  RAW input keeps the
// sheet from re-interpreting values the user typed into the edit form.
func (g *googleSheets) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("gsheets: cell (%d,%d) out of range", row, col)
	}
	rng := fmt.Sprintf("%s!%s%d", g.worksheet, columnLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gsheets: update %s: %w", rng, err)
	}
	return nil
}

// cellText renders one API cell value as the text the sheet displays.
func cellText(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
