//go:build !sqlite_cgo
// +build !sqlite_cgo

package storage

// Default build. No C toolchain is needed:
//
//	CGO_ENABLED=0 go build ./...
//
// Uses the pure Go SQLite port modernc.org/sqlite.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver registered by this build
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
