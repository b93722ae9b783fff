package drivers

import (
	// Export the modernc SQLite driver so production binaries can opt in
	// by importing this lightweight package instead of pulling the
	// dependency into every test build.
	_ "modernc.org/sqlite"
)
