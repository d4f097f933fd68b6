// Package database manages the SQLite command journal.
//
// It wraps database/sql with WAL-mode setup, embedded schema migrations,
// and health checks. Screen command history lives here; see
// internal/screen for the repository built on top.
package database
