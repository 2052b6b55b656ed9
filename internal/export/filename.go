package export

import (
	"regexp"
	"strings"
)

const DEFAULT_FILENAME = "export"

var whitespace_regex = regexp.MustCompile(`\s+`)

// Filename derives an artifact name from a table title: lower case, each
// whitespace run replaced by "-". A blank title falls back to "export".
func Filename(title, ext string) string {
	name := whitespace_regex.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, name)
	if len(name) == 0 {
		name = DEFAULT_FILENAME
	}
	if len(ext) > 0 {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return name
}
