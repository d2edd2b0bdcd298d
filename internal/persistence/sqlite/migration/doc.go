// Package migration applies the embedded, versioned SQL migrations that
// define the booking schema.
//
// Migration files live in the embedded sql/ directory and follow the
// {version}_{description}.sql naming convention. Each file is executed in a
// single transaction and recorded in the schema_migrations table, so a
// partially applied migration never leaves the version table claiming it
// succeeded. Running the manager twice is a no-op for already applied
// versions.
package migration
