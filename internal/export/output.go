package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrOutputDirRequired  = errors.New("output_dir is required")
	ErrOutputDirTraversal = errors.New("output_dir cannot contain path traversal")
	ErrOutputDirUnclean   = errors.New("output_dir must be clean path")
	ErrOutputDirMissing   = errors.New("output_dir does not exist")
	ErrOutputDirNotDir    = errors.New("output_dir is not a directory")
)

// SanitizeName strips control characters, replaces anything outside a
// conservative file-name alphabet with '_' and truncates to maxLen runes.
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(" -_.,()", r):
			return r
		default:
			return '_'
		}
	}, s))

	if runes := []rune(cleaned); maxLen > 0 && len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}

// ValidateOutputDir accepts only clean, absolute-or-relative paths of an
// existing directory without ".." segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrOutputDirRequired
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return ErrOutputDirTraversal
		}
	}
	if filepath.Clean(dir) != dir {
		return ErrOutputDirUnclean
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return ErrOutputDirMissing
	}
	if err != nil {
		return fmt.Errorf("invalid output_dir: %w", err)
	}
	if !info.IsDir() {
		return ErrOutputDirNotDir
	}
	return nil
}
