package migration

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

// Pattern matches: {version}_{description}.sql
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scanner loads migrations from an embedded filesystem.
type Scanner struct {
	fsys fs.FS
}

// NewScanner returns a scanner over the migrations embedded in this package.
func NewScanner() *Scanner {
	sub, err := fs.Sub(embeddedMigrations, "sql")
	if err != nil {
		// The sql directory is embedded at compile time; failure here means
		// the package itself is broken.
		panic(err)
	}
	return &Scanner{fsys: sub}
}

// NewScannerFS returns a scanner over the provided filesystem. Tests use it
// to exercise the scanner against synthetic migration sets.
func NewScannerFS(fsys fs.FS) *Scanner {
	return &Scanner{fsys: fsys}
}

// ScanMigrations returns all embedded migrations ordered by version.
func (s *Scanner) ScanMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, newError("", "read migration directory", err)
	}

	seen := make(map[string]string, len(entries))
	migrations := make([]Migration, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		migration, err := s.parseFile(entry.Name())
		if err != nil {
			return nil, err
		}

		if other, ok := seen[migration.Version]; ok {
			return nil, newError(migration.Version, "scan",
				fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, other, entry.Name()))
		}
		seen[migration.Version] = entry.Name()
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func (s *Scanner) parseFile(name string) (Migration, error) {
	match := fileNamePattern.FindStringSubmatch(name)
	if match == nil {
		return Migration{}, newError("", "parse "+name,
			fmt.Errorf("%w: name does not match {version}_{description}.sql", ErrInvalidMigrationFile))
	}

	content, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return Migration{}, newError(match[1], "read "+name, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return Migration{}, newError(match[1], "parse "+name,
			fmt.Errorf("%w: file is empty", ErrInvalidMigrationFile))
	}

	sum := sha256.Sum256(content)

	return Migration{
		Version:     match[1],
		Description: strings.ReplaceAll(match[2], "_", " "),
		SQL:         string(content),
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}
