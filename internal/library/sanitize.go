package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameLength = 180

var reservedReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFilename turns an arbitrary title into a safe single-component
// filename. Unicode is normalized to NFC, reserved and control characters
// are stripped, and overlong names are truncated, preserving the extension.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	name = reservedReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		return ""
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		base := name[:maxFilenameLength-len(ext)]
		name = strings.TrimRight(base, ". ") + ext
	}
	return name
}

// EnsureUnique returns a filename that does not collide with an existing
// entry in dir, suffixing " (n)" before the extension as needed.
func EnsureUnique(dir, name string) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		// Any stat error, not just not-exist, means the candidate is
		// treated as free. A directory that cannot be probed would
		// otherwise make every name look taken.
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
}
