// Package security validates operator-supplied filesystem paths.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are shell metacharacters never expected in a database path.
const forbiddenChars = ";&|$`(){}<>!\n\r"

// ErrInvalidPath is returned for paths that fail validation.
var ErrInvalidPath = errors.New("invalid path")

// CleanPath returns path cleaned, made absolute and, when it exists,
// with symlinks resolved. A path that does not exist yet is returned
// cleaned so callers may create it.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w: forbidden character %q in %s", ErrInvalidPath, path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, os.ErrNotExist):
		return abs, nil
	default:
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
}
