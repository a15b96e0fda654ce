// Package jsonfile persists the medicine collection as a pretty-printed JSON
// array in a single file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

type Backend struct {
	path string
}

func New(path string) *Backend {
	return &Backend{path: path}
}

// Load reads the whole collection. A missing file is an empty collection,
// not an error. An unparsable file is reported as domain.ErrCorruptStore.
func (b *Backend) Load(ctx context.Context) ([]domain.Medicine, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store %s: %w", b.path, err)
	}

	var col []domain.Medicine
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStore, b.path, err)
	}
	return col, nil
}

// Save overwrites the store with col. The collection is written to a temp
// file in the same directory and renamed over the target, so a failed write
// leaves the previous content intact.
func (b *Backend) Save(ctx context.Context, col []domain.Medicine) error {
	if col == nil {
		col = []domain.Medicine{}
	}
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".medicines-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		if cerr := tmp.Close(); cerr != nil {
			slog.Error("failed to close temp file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			slog.Error("failed to remove temp file after write error", "error", rerr)
		}
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			slog.Error("failed to remove temp file after close error", "error", rerr)
		}
		return fmt.Errorf("failed to close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			slog.Error("failed to remove temp file after rename error", "error", rerr)
		}
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}
