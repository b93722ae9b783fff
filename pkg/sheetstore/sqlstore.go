package sheetstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqlStore mirrors the sheet as a cell grid in a relational backend:
// one row per (row, column) pair.  The grid shape keeps the SQL
// identical for sqlite and PostgreSQL and preserves the sheet's
// by-address write semantics exactly.
type sqlStore struct {
	db     *sql.DB
	driver string
}

const createCellsTable = `CREATE TABLE IF NOT EXISTS sheet_cells (
	row_num INTEGER NOT NULL,
	col_num INTEGER NOT NULL,
	value   TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (row_num, col_num)
)`

func openSQL(cfg Config) (*sqlStore, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Backend))
	var dsn string
	switch driver {
	case "sqlite":
		dsn = cfg.DBPath
		if dsn == "" {
			dsn = "dog-walking-map.sqlite"
		}
	case "pgx":
		if strings.TrimSpace(cfg.DBConn) != "" {
			dsn = cfg.DBConn
		} else {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.PGSSLMode)
		}
	default:
		return nil, fmt.Errorf("unsupported sql backend: %s", cfg.Backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	if driver == "sqlite" {
		// One physical connection; the sqlite driver does not tolerate
		// concurrent statements over a shared file.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if _, err := db.Exec(createCellsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sheet_cells: %w", err)
	}
	return &sqlStore{db: db, driver: driver}, nil
}

func (s *sqlStore) Name() string { return s.driver }

// ReadRows reassembles the dense sheet from the cell grid.  Missing
// cells read as empty strings so the result looks exactly like a sheet
// export.
func (s *sqlStore) ReadRows(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT row_num, col_num, value FROM sheet_cells ORDER BY row_num, col_num")
	if err != nil {
		return nil, fmt.Errorf("read sheet_cells: %w", err)
	}
	defer rows.Close()

	var (
		cells          []cell
		maxRow, maxCol int
	)
	for rows.Next() {
		var c cell
		if err := rows.Scan(&c.row, &c.col, &c.value); err != nil {
			return nil, fmt.Errorf("scan sheet_cells: %w", err)
		}
		if c.row < 1 || c.col < 1 {
			continue
		}
		cells = append(cells, c)
		if c.row > maxRow {
			maxRow = c.row
		}
		if c.col > maxCol {
			maxCol = c.col
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheet_cells: %w", err)
	}
	return assembleGrid(cells, maxRow, maxCol), nil
}

// cell is one sparse entry of the grid.
type cell struct {
	row, col int
	value    string
}

// assembleGrid lays sparse cells out as a dense row-major table.
func assembleGrid(cells []cell, maxRow, maxCol int) [][]string {
	if maxRow == 0 || maxCol == 0 {
		return nil
	}
	grid := make([][]string, maxRow)
	for i := range grid {
		grid[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		grid[c.row-1][c.col-1] = c.value
	}
	return grid
}

// UpdateCell upserts one cell of the grid.
func (s *sqlStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%s: cell (%d,%d) out of range", s.driver, row, col)
	}
	q := rebind(s.driver, `INSERT INTO sheet_cells (row_num, col_num, value) VALUES (?, ?, ?)
		ON CONFLICT (row_num, col_num) DO UPDATE SET value = excluded.value`)
	if _, err := s.db.ExecContext(ctx, q, row, col, value); err != nil {
		return fmt.Errorf("%s: update cell (%d,%d): %w", s.driver, row, col, err)
	}
	return nil
}

// ImportFeed replaces the whole grid with the given rows inside one
// transaction.  Used to seed a local snapshot from a CSV export.
func (s *sqlStore) ImportFeed(ctx context.Context, feed [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin import: %w", s.driver, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_cells"); err != nil {
		return fmt.Errorf("%s: clear sheet_cells: %w", s.driver, err)
	}
	insert := rebind(s.driver, "INSERT INTO sheet_cells (row_num, col_num, value) VALUES (?, ?, ?)")
	for r, row := range feed {
		for c, value := range row {
			if _, err := tx.ExecContext(ctx, insert, r+1, c+1, value); err != nil {
				return fmt.Errorf("%s: import cell (%d,%d): %w", s.driver, r+1, c+1, err)
			}
		}
	}
	return tx.Commit()
}

// Close releases the underlying pool.  Kept off the Store interface so
// the Google Sheets backend does not need a no-op.
func (s *sqlStore) Close() error { return s.db.Close() }

// rebind rewrites "?" placeholders to "$N" for drivers that require
// numbered parameters.  sqlite accepts "?" as-is.
func rebind(driver, query string) string {
	if driver != "pgx" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
