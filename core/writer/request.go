package writer

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/action"
)

// DefaultMaxEmbedDepth bounds the number of dotted segments in an
// embedding path.
const DefaultMaxEmbedDepth = 5

// Predicate decides whether a field key is written.
type Predicate func(key string) bool

// FieldSelection maps a vocabulary type to the keys requested for it.
// Types without an entry keep every key.
type FieldSelection map[string][]string

// For returns the predicate for a resource with the given types. Keys
// requested for any of the types are kept; when no type has an entry the
// predicate keeps everything.
func (s FieldSelection) For(types []string) Predicate {
	var allowed map[string]bool
	for _, t := range types {
		keys, ok := s[t]
		if !ok {
			continue
		}
		if allowed == nil {
			allowed = make(map[string]bool)
		}
		for _, k := range keys {
			allowed[k] = true
		}
	}
	if allowed == nil {
		return func(string) bool { return true }
	}
	return func(key string) bool { return allowed[key] }
}

// Request is the per-request configuration of a write.
type Request struct {
	// ServerURL is the absolute base URL, without a trailing slash.
	ServerURL   string
	Language    language.Tag
	Fields      FieldSelection
	Embedded    []string
	Credentials action.Credentials

	// MaxEmbedDepth bounds embedding paths; zero means DefaultMaxEmbedDepth.
	MaxEmbedDepth int
}

func (r Request) maxDepth() int {
	if r.MaxEmbedDepth <= 0 {
		return DefaultMaxEmbedDepth
	}
	return r.MaxEmbedDepth
}

func (r Request) credentials() action.Credentials {
	if r.Credentials == nil {
		return action.Anonymous
	}
	return r.Credentials
}

// embedSet answers whether a dotted path is requested for embedding.
// Requesting "author.organization" also embeds "author".
type embedSet struct {
	paths    map[string]bool
	maxDepth int
}

func newEmbedSet(paths []string, maxDepth int) embedSet {
	s := embedSet{paths: make(map[string]bool), maxDepth: maxDepth}
	for _, p := range paths {
		p = strings.Trim(p, ".")
		if p == "" {
			continue
		}
		parts := strings.Split(p, ".")
		for i := range parts {
			s.paths[strings.Join(parts[:i+1], ".")] = true
		}
	}
	return s
}

// embed reports whether path is requested and within the depth bound.
func (s embedSet) embed(path string) (ok, tooDeep bool) {
	if !s.paths[path] {
		return false, false
	}
	if strings.Count(path, ".")+1 > s.maxDepth {
		return false, true
	}
	return true, false
}

var fieldsParam = regexp.MustCompile(`^fields\[([^\]]+)\]$`)

// ParseFieldSelection reads fields[Type]=a,b parameters.
func ParseFieldSelection(q url.Values) FieldSelection {
	var s FieldSelection
	for name, values := range q {
		m := fieldsParam.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if s == nil {
			s = make(FieldSelection)
		}
		keys := []string{}
		for _, v := range values {
			keys = append(keys, splitList(v)...)
		}
		s[m[1]] = append(s[m[1]], keys...)
	}
	return s
}

// ParseEmbedded reads embedded=a,a.b parameters.
func ParseEmbedded(q url.Values) []string {
	var paths []string
	for _, v := range q["embedded"] {
		paths = append(paths, splitList(v)...)
	}
	return paths
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
