package http

import (
	"fmt"
	"sort"
	"sync"

	"github.com/munnerz/goautoneg"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/mapper"
)

// JSONMediaType is accepted as an alias of the default format.
const JSONMediaType = "application/json"

// Formats holds the output formats the channel can negotiate, keyed by
// media type.
type Formats struct {
	mu      sync.RWMutex
	formats map[string]mapper.Format
	names   map[string]string
}

// NewFormats creates an empty format set.
func NewFormats() *Formats {
	return &Formats{
		formats: make(map[string]mapper.Format),
		names:   make(map[string]string),
	}
}

// Register adds f under a short name ("hydra", "hal").
func (f *Formats) Register(name string, format mapper.Format) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	mt := format.MediaType()
	if _, exists := f.formats[mt]; exists {
		return fmt.Errorf("format %q already registered", mt)
	}
	if _, exists := f.names[name]; exists {
		return fmt.Errorf("format name %q already registered", name)
	}
	f.formats[mt] = format
	f.names[name] = mt
	return nil
}

// Named returns the format registered under name.
func (f *Formats) Named(name string) (mapper.Format, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	mt, ok := f.names[name]
	if !ok {
		return nil, false
	}
	return f.formats[mt], true
}

// MediaTypes lists the registered media types, sorted.
func (f *Formats) MediaTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.formats))
	for mt := range f.formats {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Negotiate picks the format for an Accept header. The format named def
// wins for an empty header, wildcards and application/json. It reports
// false when the header accepts none of the registered media types.
func (f *Formats) Negotiate(accept, def string) (mapper.Format, bool) {
	fallback, ok := f.Named(def)
	if !ok {
		return nil, false
	}
	if accept == "" {
		return fallback, true
	}

	// The default leads the alternatives so "*/*" resolves to it.
	alternatives := []string{fallback.MediaType()}
	for _, mt := range f.MediaTypes() {
		if mt != fallback.MediaType() {
			alternatives = append(alternatives, mt)
		}
	}
	alternatives = append(alternatives, JSONMediaType)

	switch chosen := goautoneg.Negotiate(accept, alternatives); chosen {
	case "":
		return nil, false
	case JSONMediaType:
		return fallback, true
	default:
		f.mu.RLock()
		defer f.mu.RUnlock()
		return f.formats[chosen], true
	}
}

// Languages matches Accept-Language headers against the languages the
// application localizes into.
type Languages struct {
	matcher   language.Matcher
	supported []language.Tag
}

// NewLanguages creates a matcher; the first tag is the fallback.
func NewLanguages(supported ...language.Tag) *Languages {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	return &Languages{
		matcher:   language.NewMatcher(supported),
		supported: supported,
	}
}

// Match returns the best supported language for an Accept-Language header.
func (l *Languages) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return l.supported[0]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.supported[0]
	}
	_, index, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.supported[0]
	}
	return l.supported[index]
}
