package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every SQL migration in dir for the conventions the
// deploy pipeline relies on: timestamped snake_case filenames, unique
// versions, an Up section before the Down section, and balanced
// StatementBegin/StatementEnd markers. An empty directory passes.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateMigrationSQL(string(data)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func validateMigrationSQL(content string) error {
	up := strings.Index(content, "-- +goose Up")
	if up < 0 {
		return fmt.Errorf("missing %q", "-- +goose Up")
	}
	down := strings.Index(content, "-- +goose Down")
	if down < 0 {
		return fmt.Errorf("missing %q", "-- +goose Down")
	}
	if down < up {
		return fmt.Errorf("Down section appears before Up")
	}

	begins := strings.Count(content, "-- +goose StatementBegin")
	ends := strings.Count(content, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("unbalanced statement markers: %d begin, %d end", begins, ends)
	}
	return nil
}
