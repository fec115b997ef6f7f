//go:build !purego

package journal

// Default build: cgo SQLite via github.com/mattn/go-sqlite3.
//
//	go build ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver the journal opens.
	DriverName = "sqlite3"

	BuildMode = "cgo"
)
