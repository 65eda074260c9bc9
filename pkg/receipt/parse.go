package receipt

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse decodes a receipt content record from JSON and validates it
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}

	if err := Validate(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// ParseFile decodes a receipt content record from a file on disk
func ParseFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt file: %w", err)
	}

	return Parse(data)
}

// ToJSON converts a Content record to indented JSON bytes
func (c *Content) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile writes a Content record to disk
func (c *Content) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
