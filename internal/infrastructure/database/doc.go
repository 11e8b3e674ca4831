// Package database provides the SQLite reading journal.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations embedded from migrations/*.sql
//   - The "sqlite" output provider, which appends every payload to the
//     readings table
//
// Connection-string options for the provider:
//
//	path{path,p}               database file (mandatory)
//	walmode{walmode,wal}       journal_mode=WAL, default 1
//	busytimeout{busytimeout,bt} seconds, default 5
//	retrycount{retrycount,rc}  open retries, default 3
//	retrydelay{retrydelay,rd}  seconds between open retries, default 2
//
// Usage:
//
//	j := database.NewJournal(log)
//	if err := j.Init("p=/var/lib/sensorstream/readings.db"); err != nil {
//	    return err
//	}
//	if err := j.Open(); err != nil {
//	    return err
//	}
//	defer j.Close()
//	err = j.Write(payload)
//
// Migrations are forward-only files named YYYYMMDD_HHMMSS_name.up.sql,
// applied in version order and recorded in schema_migrations.
package database
