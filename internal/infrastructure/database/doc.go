// Package database manages the SQLite connection and schema migrations for
// Gray Logic Assistant.
//
// SQLite is opened with WAL mode and a busy timeout so that the HTTP API and
// the MQTT state subscriber can share the connection without "database is
// locked" errors. Migrations are embedded in the binary and applied at
// startup; the schema_migrations table records which versions have run.
package database
