package utils

import (
	"path"
	"strings"
	"unicode"
)

// SanitizeFilename reduces a client-supplied name to a single safe path segment.
func SanitizeFilename(name string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	clean = path.Base(clean)
	clean = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' || r == '/' {
			return -1
		}
		return r
	}, clean)
	clean = strings.TrimSpace(clean)
	if clean == "" || clean == "." || clean == ".." {
		return "file"
	}
	return clean
}
