package action

import (
	"fmt"
	"net/http"
	"strings"
)

// AnyRoute is the item segment that matches any concrete identifier.
const AnyRoute = "*"

// Methods is the fixed, ordered set of supported HTTP methods.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Kind classifies a key by the shape of its segments.
type Kind int

const (
	KindCollection Kind = iota + 1
	KindItem
	KindCustomCollection
	KindNested
	KindCustomNested
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	case KindCustomCollection:
		return "custom-collection"
	case KindNested:
		return "nested"
	case KindCustomNested:
		return "custom-nested"
	default:
		return "unknown"
	}
}

// Key identifies one operation: an HTTP method and up to four positional
// path segments. Keys are comparable and used directly as map keys.
type Key struct {
	Method   string
	Resource string
	Item     string
	Nested   string
	Extra    string
}

// NewKey builds a key from a method and path segments exactly as supplied.
func NewKey(method string, segments ...string) (Key, error) {
	if method == "" {
		return Key{}, fmt.Errorf("action key: method is required")
	}
	if len(segments) == 0 || len(segments) > 4 {
		return Key{}, fmt.Errorf("action key: %d segments, want 1 to 4", len(segments))
	}
	for i, s := range segments {
		if s == "" {
			return Key{}, fmt.Errorf("action key: segment %d is empty", i)
		}
		if s == AnyRoute && i != 1 {
			return Key{}, fmt.Errorf("action key: wildcard only allowed as item segment")
		}
	}

	k := Key{Method: strings.ToUpper(method)}
	fields := []*string{&k.Resource, &k.Item, &k.Nested, &k.Extra}
	for i, s := range segments {
		*fields[i] = s
	}
	return k, nil
}

// ParseKey builds a key from a method and a slash-separated path such as
// "blog-postings/*/comments".
func ParseKey(method, path string) (Key, error) {
	return NewKey(method, strings.Split(strings.Trim(path, "/"), "/")...)
}

// Segments returns the present segments in order.
func (k Key) Segments() []string {
	out := make([]string, 0, 4)
	for _, s := range []string{k.Resource, k.Item, k.Nested, k.Extra} {
		if s == "" {
			break
		}
		out = append(out, s)
	}
	return out
}

// Path returns the segments joined with "/".
func (k Key) Path() string {
	return strings.Join(k.Segments(), "/")
}

// String returns "METHOD path".
func (k Key) String() string {
	return k.Method + " " + k.Path()
}

// Kind classifies the key structurally by segment count and wildcard-ness.
func (k Key) Kind() Kind {
	switch len(k.Segments()) {
	case 1:
		return KindCollection
	case 2:
		if k.Item == AnyRoute {
			return KindItem
		}
		return KindCustomCollection
	case 3:
		return KindNested
	case 4:
		return KindCustomNested
	default:
		return 0
	}
}

// Generic returns the key with its item segment replaced by AnyRoute.
// It reports false when the key has no item segment or is already generic.
func (k Key) Generic() (Key, bool) {
	if k.Item == "" || k.Item == AnyRoute {
		return k, false
	}
	k.Item = AnyRoute
	return k, true
}

// WithMethod returns the key with a different method.
func (k Key) WithMethod(method string) Key {
	k.Method = strings.ToUpper(method)
	return k
}
