package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/pkg/embedded"
)

// ErrLoad marks a failure to produce a strategy table. It is fatal for the
// session: there is no partial or fallback table.
var ErrLoad = errors.New("failed to load strategy table")

// Decode reads a strategy table from JSON.
func Decode(r io.Reader) (*Table, error) {
	var table Table
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLoad, err)
	}
	if len(table.Strategies) == 0 {
		return nil, fmt.Errorf("%w: no strategies defined", ErrLoad)
	}

	normalized := make(map[domain.Position]HandStrategy, len(table.Strategies))
	for position, hands := range table.Strategies {
		key := domain.NormalizePosition(string(position))
		if _, dup := normalized[key]; dup {
			return nil, fmt.Errorf("%w: position %s defined twice", ErrLoad, key)
		}
		normalized[key] = hands
	}
	table.Strategies = normalized

	return &table, nil
}

// LoadFile reads a strategy table from a JSON file on disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	return Decode(f)
}

// LoadFS reads a strategy table from a file system, typically the embedded assets.
func LoadFS(fsys fs.FS, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	return Decode(f)
}

// Load reads the table from path, or the bundled default table when path is empty.
// A configured path that cannot be read is an error; it never falls back to the default.
func Load(path string) (*Table, error) {
	if path == "" {
		return LoadFS(embedded.Files, embedded.DefaultStrategyPath)
	}
	return LoadFile(path)
}
