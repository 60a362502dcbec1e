// Package export persists batch results as the products artifact served by
// the API: a JSON array of products, each with a zero-based id.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// Entry is one exported product.
type Entry struct {
	ID int `json:"id"`
	models.Product
}

// Entries numbers the successful products in results order. Failed pages are skipped.
func Entries(results []models.Result) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			continue
		}
		entries = append(entries, Entry{ID: len(entries), Product: *r.Product})
	}
	return entries
}

// Write stores the successful products at path, creating parent directories.
// It returns the number of products written.
func Write(path string, results []models.Result) (int, error) {
	entries := Entries(results)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding products: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("writing file %s: %w", path, err)
	}
	return len(entries), nil
}

// Load reads an artifact written by Write. A missing file is an empty list.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Find returns the product with the given id, or models.ErrNotFound.
func Find(entries []Entry, id int) (Entry, error) {
	if id < 0 || id >= len(entries) {
		return Entry{}, models.ErrNotFound
	}
	return entries[id], nil
}
