// Package migration manages the SQLite schema for the training console.
//
// Migrations are embedded in the binary as ordered SQL statement lists and
// applied transactionally. The schema_migrations table records each applied
// version so startup is idempotent.
package migration
