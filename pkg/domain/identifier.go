package domain

import (
	"strings"
	"unicode"
)

const (
	// Separator joins a stack name and an identifier when forming keys for
	// external collaborators (authorization backends, metrics). Identifiers
	// therefore must never contain it.
	Separator = "/"

	// DefaultStack is the namespace used when a root feature declares none.
	DefaultStack = "default"
)

// ValidIdentifier reports whether id is usable within a stack: non-empty
// and free of the separator character.
func ValidIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, Separator)
}

// NodeKey joins a stack and an identifier into the external key form.
func NodeKey(stack, id string) string {
	if stack == "" {
		stack = DefaultStack
	}
	return stack + Separator + id
}

// DeriveIdentifier computes an identifier from a node's structural path:
// the declared type-style name with its role suffix ("Feature"/"Action")
// stripped and kebab-cased, prefixed by the kebab-cased namespace segments
// between the root and the node, joined by "-".
//
//	DeriveIdentifier(nil, "PurgeCacheAction")            // "purge-cache"
//	DeriveIdentifier([]string{"Admin"}, "CacheFeature")  // "admin-cache"
func DeriveIdentifier(segments []string, name string) string {
	parts := make([]string, 0, len(segments)+1)
	for _, seg := range segments {
		if k := Kebab(stripRoleSuffix(seg)); k != "" {
			parts = append(parts, k)
		}
	}
	if k := Kebab(stripRoleSuffix(name)); k != "" {
		parts = append(parts, k)
	}
	return strings.Join(parts, "-")
}

func stripRoleSuffix(name string) string {
	for _, suffix := range []string{"Feature", "Action"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != "" && trimmed != name {
			return trimmed
		}
	}
	return name
}

// Kebab converts a CamelCase, snake_case or space-separated name to
// kebab-case. Runs of upper-case letters are kept together, so
// "HTTPServer" becomes "http-server".
func Kebab(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == ' ' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		case unicode.IsUpper(r):
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") && (prevLower || (nextLower && i > 0 && unicode.IsUpper(runes[i-1]))) {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
