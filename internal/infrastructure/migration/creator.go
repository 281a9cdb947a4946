package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var migrationFileTemplate = template.Must(template.New("migration").Parse(
	`-- {{.Name}}{{if .Direction}} ({{.Direction}}){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// MigrationFile describes a newly created up/down pair
type MigrationFile struct {
	Version     uint
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

var nonIdentifier = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lowercases name and collapses everything else into single
// underscores, so "Add Scan Index!" becomes "add_scan_index".
func sanitizeName(name string) string {
	return strings.Trim(nonIdentifier.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateMigration writes an empty up/down pair numbered one past the
// highest existing sequence number in dir.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	for _, m := range existing {
		var seq uint
		if _, err := fmt.Sscanf(m, "%d_", &seq); err == nil && seq >= next {
			next = seq + 1
		}
	}

	stem := fmt.Sprintf("%06d_%s", next, base)
	mf := &MigrationFile{
		Version:     next,
		Name:        name,
		Description: description,
		UpPath:      filepath.Join(dir, stem+upSuffix),
		DownPath:    filepath.Join(dir, stem+downSuffix),
	}

	if err := writeMigrationFile(mf.UpPath, mf, ""); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, mf, "rollback"); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path string, mf *MigrationFile, direction string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	data := struct {
		Name        string
		Description string
		Direction   string
		Created     string
	}{mf.Name, mf.Description, direction, time.Now().Format(time.RFC3339)}
	if err := migrationFileTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ListMigrations returns the sorted stems of every *.up.sql in dir. A
// missing directory yields an empty list.
func ListMigrations(dir string) ([]string, error) {
	return listMigrations(os.DirFS(dir))
}

func listMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	stems := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stem, ok := strings.CutSuffix(entry.Name(), upSuffix); ok && stem != "" {
			stems = append(stems, stem)
		}
	}
	sort.Strings(stems)
	return stems, nil
}

// ListEmbedded returns the stems of the migrations compiled into the binary
func ListEmbedded(fsys fs.FS) ([]string, error) {
	return listMigrations(fsys)
}
