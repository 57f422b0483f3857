// Package database provides the SQLite connection for LoRaWatch Core.
//
// It manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Schema migrations read from an fs.FS (the migrations package embeds them)
//   - Health checks for the API's /health endpoint
//
// The only tables are the event journal and schema_migrations. Device
// state is not persisted; it is rebuilt from ChirpStack on start.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive. Each has an .up.sql and a .down.sql file.
package database
