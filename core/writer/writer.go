// Package writer walks models through their Representors and emits every
// piece of the resulting document through a message mapper, so one walk
// serves every wire format. It also writes pages, forms, errors and the API
// documentation.
package writer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/representor"
)

// ErrNoRepresentor aborts a write whose root model has no registered
// Representor.
var ErrNoRepresentor = errors.New("no representor registered")

// RepresentorSource looks up the Representor of an identifier type.
type RepresentorSource interface {
	Representor(identifierType string) (*representor.Representor, bool)
}

// PathResolver maps an identifier to the resource path "<name>/<id>".
type PathResolver interface {
	Path(identifierType string, id any) (string, bool)
}

// NameResolver maps an identifier type to its resource name.
type NameResolver interface {
	Name(identifierType string) (string, bool)
}

// Schema combines the lookups the writer needs. *registry.Registry
// implements it.
type Schema interface {
	RepresentorSource
	PathResolver
	NameResolver
}

// ModelFetcher loads related instances for embedding.
type ModelFetcher interface {
	Fetch(ctx context.Context, identifierType string, id any) (any, error)
}

// FetcherFunc adapts a function to ModelFetcher.
type FetcherFunc func(ctx context.Context, identifierType string, id any) (any, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, identifierType string, id any) (any, error) {
	return f(ctx, identifierType, id)
}

// Observer receives writer activity, typically for metrics.
type Observer interface {
	DocumentWritten(kind string, d time.Duration)
	RelationOmitted(reason string)
	ResourceEmbedded(identifierType string)
}

type nopObserver struct{}

func (nopObserver) DocumentWritten(string, time.Duration) {}
func (nopObserver) RelationOmitted(string)                {}
func (nopObserver) ResourceEmbedded(string)               {}

// Reasons passed to Observer.RelationOmitted.
const (
	OmitNoURL         = "no_url"
	OmitFetchFailed   = "fetch_failed"
	OmitDepthLimit    = "depth_limit"
	OmitNoRepresentor = "no_representor"
)

// Writer writes documents. It holds no per-request state and is safe for
// concurrent use.
type Writer struct {
	schema      Schema
	fetcher     ModelFetcher
	affordances *affordance.Resolver
	observer    Observer
	logger      zerolog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithFetcher enables embedding of related models.
func WithFetcher(f ModelFetcher) Option {
	return func(w *Writer) {
		w.fetcher = f
	}
}

// WithAffordances attaches operations to written resources and pages.
func WithAffordances(r *affordance.Resolver) Option {
	return func(w *Writer) {
		w.affordances = r
	}
}

// WithObserver reports writer activity.
func WithObserver(o Observer) Option {
	return func(w *Writer) {
		if o != nil {
			w.observer = o
		}
	}
}

// New creates a writer over schema.
func New(schema Schema, logger zerolog.Logger, opts ...Option) *Writer {
	w := &Writer{
		schema:   schema,
		observer: nopObserver{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}
