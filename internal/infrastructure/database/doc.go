// Package database provides SQLite connectivity and schema migrations.
//
// The hub stores one state snapshot per bulb in SQLite so bulb state
// survives restarts. Migrations are embedded in the binary by the
// top-level migrations package and applied at startup.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
