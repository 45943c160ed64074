package storage

import (
	"path/filepath"
	"strings"
)

var unsafeNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// ImportName turns a local file name into a single path segment for a disk:
// unsafe characters are replaced, whitespace runs become one dash and the
// extension is lowercased. An unusable name yields "episode" plus the
// extension.
func ImportName(localPath string) string {
	base := filepath.Base(strings.TrimSpace(localPath))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	stem = unsafeNameReplacer.Replace(stem)
	stem = strings.Join(strings.Fields(stem), "-")
	stem = strings.Trim(stem, ".-")
	if stem == "" {
		stem = "episode"
	}
	return stem + ext
}
