package drivers

import (
	// Register pgx under driver name "pgx" for the PostgreSQL cell-grid
	// backend.
	_ "github.com/jackc/pgx/v5/stdlib"
)
