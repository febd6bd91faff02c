package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a flat JSON array of content records from path.
func LoadFile(path string) ([]ContentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var records []ContentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	for _, rec := range records {
		switch rec.Kind {
		case KindMovie, KindEpisode:
		default:
			return nil, fmt.Errorf("catalog record %q has unknown kind %q", rec.ID, rec.Kind)
		}
	}
	return records, nil
}

// NewFromFile builds an in-memory catalog from a JSON catalog file.
func NewFromFile(path string) (*MemoryCatalog, error) {
	records, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(records)
}
