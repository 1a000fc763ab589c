package util

import (
	"encoding/json"
	"fmt"
	"os"

	"match-occupancy/models/occupancy"
)

// ReadRecordsFromJSON loads a slice of occupancy records from JSON on disk.
func ReadRecordsFromJSON(filePath string) ([]occupancy.Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var records []occupancy.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal occupancy records: %w", err)
	}
	return records, nil
}

