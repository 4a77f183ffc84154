package trends

import (
	"regexp"
	"strings"
)

var parenRe = regexp.MustCompile(`\([^)]*\)`)

// agencyBylines are credits that name a wire service or a desk rather than
// a person; author trends for these are meaningless.
var agencyBylines = map[string]bool{
	"ap":                   true,
	"associated press":     true,
	"the associated press": true,
	"reuters":              true,
	"afp":                  true,
	"staff":                true,
	"staff reports":        true,
	"newsroom":             true,
	"editorial board":      true,
	"the editorial board":  true,
}

// CleanAuthor normalizes a raw byline to a single author name, or returns
// the empty string when no usable name remains. Multi-author bylines keep
// the first name only, since per-author stats want one key per row.
func CleanAuthor(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "by ") {
		name = strings.TrimSpace(name[3:])
	}

	name = strings.TrimSpace(parenRe.ReplaceAllString(name, ""))

	// "Jane Doe, Senior Correspondent" keeps only the name.
	if i := strings.Index(name, ","); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	for _, sep := range []string{" and ", " And ", " AND ", " with ", " With ", " & "} {
		if i := strings.Index(name, sep); i >= 0 {
			name = strings.TrimSpace(name[:i])
			break
		}
	}

	if len(name) < 2 || agencyBylines[strings.ToLower(name)] {
		return ""
	}
	return name
}
