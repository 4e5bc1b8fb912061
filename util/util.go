package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes v to fileName as indented JSON.
func WriteJSON(fileName string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling %s: %w", fileName, err)
	}

	if err := os.WriteFile(fileName, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", fileName, err)
	}
	return nil
}
