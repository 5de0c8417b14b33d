//go:build windows

package export

import (
	"fmt"
	"os"
	"path/filepath"
)

func WriteEDL(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name+".edl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
