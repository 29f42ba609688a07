package delicious

import (
	"fmt"
	"os"
)

// Loader reads an export previously saved to disk.
type Loader struct {
	filePath string
}

// NewLoader creates a new export file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the whole export file
func (l *Loader) Load() ([]byte, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return data, nil
}
