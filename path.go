package drivels

import (
	"fmt"
	"strings"
)

// Path represents an absolute path in Google Drive.
// Paths must start with '/' and use forward slashes as separators (e.g., "/folder/subfolder/file").
// Relative path components like "." and ".." are not allowed.
type Path string

// splitPath validates path and returns its components in order. The root path
// "/" yields zero components. Empty components from doubled or trailing
// slashes are skipped.
func splitPath(path string) (parts []string, err error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", ErrInvalidPath)
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must be absolute and start with '/': %w", ErrInvalidPath)
	}

	for _, p := range strings.Split(path, "/") {
		if p == "." || p == ".." {
			return nil, fmt.Errorf("relative path components are not allowed: %w", ErrInvalidPath)
		}
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}

	return parts, nil
}

// normalizePath joins components back into the canonical form used as a cache
// key: leading slash, single separators, no trailing slash. Zero components
// normalize to "/".
func normalizePath(parts []string) Path {
	return Path("/" + strings.Join(parts, "/"))
}

func joinPath(base Path, name string) Path {
	if base == "/" {
		return Path("/" + name)
	}
	return base + Path("/"+name)
}
