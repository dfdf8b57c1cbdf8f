// Package convention derives names from vocabulary types: resource names
// used in URLs, form identifiers and operation names.
package convention

import (
	"strings"
	"unicode"
)

// Kebab converts a CamelCase or snake_case name to kebab-case.
// "BlogPosting" becomes "blog-posting".
func Kebab(name string) string {
	var b strings.Builder
	runes := []rune(name)

	for i, r := range runes {
		switch {
		case r == '_' || r == ' ' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteRune('-')
			}
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "-")
}

// ResourceName derives the URL resource name of a vocabulary type:
// kebab-case with the last word pluralized. "BlogPosting" becomes
// "blog-postings", "Person" becomes "people".
func ResourceName(typeName string) string {
	kebab := Kebab(typeName)
	if kebab == "" {
		return ""
	}

	i := strings.LastIndex(kebab, "-")
	return kebab[:i+1] + Pluralize(kebab[i+1:])
}

// Form kinds used as the first segment of form identifiers.
const (
	FormCreate = "c"
	FormUpdate = "u"
	FormAction = "a"
)

// FormID builds the path-derived identifier of a form, e.g.
// "c/blog-postings" or "a/blog-postings/publish".
func FormID(kind, resource string, extra ...string) string {
	parts := append([]string{kind, resource}, extra...)
	return strings.Join(parts, "/")
}

// OperationName builds the name of an operation: "<resource>/<label>".
func OperationName(resource, label string) string {
	return resource + "/" + strings.ToLower(label)
}
