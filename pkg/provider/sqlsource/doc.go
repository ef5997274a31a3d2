// Package sqlsource implements provider.Provider over a SQL modules table.
//
// The table mirrors the Airtable layout:
//
//	CREATE TABLE modules (
//		name   TEXT PRIMARY KEY,
//		"desc" TEXT NOT NULL DEFAULT '',
//		active BOOLEAN NOT NULL DEFAULT TRUE
//	);
//
// Both PostgreSQL (lib/pq) and SQLite (mattn/go-sqlite3) drivers are
// registered by this package.
package sqlsource
