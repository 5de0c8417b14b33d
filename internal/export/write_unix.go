//go:build !windows

package export

import (
	"fmt"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteEDL atomically writes the EDL into dir as <name>.edl and returns the
// full path.
func WriteEDL(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name+".edl")

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("create pending EDL file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.WriteString(content); err != nil {
		return "", fmt.Errorf("write EDL data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace EDL file: %w", err)
	}
	return path, nil
}
