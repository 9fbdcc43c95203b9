package formfill

import (
	"strings"
	"unicode/utf8"
)

const maxObjectNameLength = 1024

// IsValidObjectName validates that a string can be used as an object name.
// It checks that the name:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." segments (path traversal)
//   - is valid UTF-8 and at most 1024 bytes long
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Returns true if the name is valid, false otherwise.
func IsValidObjectName(name string) bool {
	if name == "" || name == "/" || name == "." {
		return false
	}

	if len(name) > maxObjectNameLength {
		return false
	}

	if name[0] == '/' || strings.HasSuffix(name, "/") {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return false
		}
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}
