//go:build purego

package journal

// Pure Go SQLite via modernc.org/sqlite, no C compiler required.
//
//	CGO_ENABLED=0 go build -tags purego ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver the journal opens.
	DriverName = "sqlite"

	BuildMode = "purego"
)
