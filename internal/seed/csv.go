package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File names inside the seed directory.
const (
	ModulesFile         = "modulos.csv"
	RolesPermissionFile = "roles_permisos.csv"
	UsersRolesFile      = "usuarios_roles.csv"
)

// ErrMissingFile is returned when a seed file is not present.
var ErrMissingFile = errors.New("seed: file not found")

// row is one CSV record keyed by its lowercase header.
type row map[string]string

func (r row) get(key string) string {
	return strings.TrimSpace(r[key])
}

func (r row) has(key string) bool {
	_, ok := r[key]
	return ok
}

func readRows(dir, name string) ([]row, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer f.Close()

	return parseRows(f, path)
}

func parseRows(r io.Reader, source string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed: read header %s: %w", source, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("seed: read %s: %w", source, err)
		}
		current := make(row, len(header))
		for i, h := range header {
			if i < len(record) {
				current[h] = record[i]
			}
		}
		rows = append(rows, current)
	}
	return rows, nil
}
