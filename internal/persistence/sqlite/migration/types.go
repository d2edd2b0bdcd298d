package migration

import "time"

// Migration represents a single versioned schema change.
type Migration struct {
	Version     string // numeric version identifier, e.g. "0001"
	Description string // human-readable description from the filename
	SQL         string // statements to execute
	Checksum    string // sha256 of the file contents
}

// AppliedMigration records a migration that was successfully executed.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}
