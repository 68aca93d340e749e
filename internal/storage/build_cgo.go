//go:build sqlite_cgo
// +build sqlite_cgo

package storage

// Compiled with CGO_ENABLED=1 and the sqlite_cgo tag:
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...
//
// Uses the C SQLite amalgamation through github.com/mattn/go-sqlite3,
// which is noticeably faster for large page caches.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver registered by this build
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
