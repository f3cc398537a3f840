package export

import (
	"encoding/json"
	"os"

	"github.com/dshills/agvsim/pkg/sim"
)

// JSON serializes a snapshot to JSON with 2-space indentation.
func JSON(snap *sim.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// JSONCompact serializes a snapshot to JSON without indentation.
// Returns compact JSON suitable for storage or transmission.
func JSONCompact(snap *sim.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// SaveJSONToFile exports a snapshot to a JSON file with indentation.
// The file is created with 0644 permissions (readable by all, writable by owner).
func SaveJSONToFile(snap *sim.Snapshot, filepath string) error {
	data, err := JSON(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// SaveJSONCompactToFile exports a snapshot to a compact JSON file.
// The file is created with 0644 permissions (readable by all, writable by owner).
func SaveJSONCompactToFile(snap *sim.Snapshot, filepath string) error {
	data, err := JSONCompact(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}
