package assemble

import "strings"

const maxSlugLen = 50

// Slugify converts a name into a filesystem-safe slug used in generated
// output filenames. Lowercase, spaces and underscores become hyphens,
// other non-alphanumerics are dropped, runs of hyphens collapse, and
// the result is truncated at a word boundary. Empty input yields
// "context".
func Slugify(name string) string {
	if strings.TrimSpace(name) == "" {
		return "context"
	}

	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-' || r == '.':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "context"
	}

	if len(slug) <= maxSlugLen {
		return slug
	}
	truncated := slug[:maxSlugLen]
	if lastHyphen := strings.LastIndex(truncated, "-"); lastHyphen > maxSlugLen/2 {
		truncated = truncated[:lastHyphen]
	}
	return strings.TrimRight(truncated, "-")
}
