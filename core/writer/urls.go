package writer

import (
	"net/url"
	"strings"
)

// Path prefixes of the URL layout.
const (
	ResourcePrefix    = "/p/"
	BinaryPrefix      = "/b/"
	FormPrefix        = "/f/"
	DocumentationPath = "/doc"
)

// URLs builds absolute URLs under a server base.
type URLs struct {
	Server string
}

// Resource returns the URL of a resource path.
func (u URLs) Resource(path string) string {
	return u.Server + ResourcePrefix + strings.TrimPrefix(path, "/")
}

// Collection returns the URL of a related collection below a resource.
func (u URLs) Collection(path, name string) string {
	return u.Resource(path) + "/" + url.PathEscape(name)
}

// Binary returns the URL serving the binary field key of a resource.
func (u URLs) Binary(path, key string) string {
	return u.Server + BinaryPrefix + strings.TrimPrefix(path, "/") + "/" + url.PathEscape(key)
}

// Form returns the URL of a form description.
func (u URLs) Form(id string) string {
	return u.Server + FormPrefix + strings.TrimPrefix(id, "/")
}

// Relative resolves an application-relative URL.
func (u URLs) Relative(rel string) string {
	return u.Server + "/" + strings.TrimPrefix(rel, "/")
}

// Documentation returns the URL of the API documentation.
func (u URLs) Documentation() string {
	return u.Server + DocumentationPath
}

// Segments splits an escaped resource path into raw segments.
func Segments(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if raw, err := url.PathUnescape(p); err == nil {
			parts[i] = raw
		}
	}
	return parts
}

// JoinSegments escapes raw segments into a resource path.
func JoinSegments(segments ...string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
