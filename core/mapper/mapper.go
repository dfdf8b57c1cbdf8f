// Package mapper defines the message mapper contracts. A mapper turns the
// events of a writer walk into the vocabulary of one wire format by
// populating document nodes. Every method must be implemented; a format
// that has no use for an event implements it as an explicit no-op.
package mapper

import (
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
)

// Relation describes a single-valued link to another resource.
type Relation struct {
	Key            string
	URL            string
	IdentifierType string

	// Type is the primary vocabulary type of the target, empty when the
	// target is not registered.
	Type string

	// InverseKey is set for bidirectional relations: the key of the
	// collection on the target that points back at this resource.
	InverseKey string
}

// Collection describes a related collection link.
type Collection struct {
	Key string
	URL string

	// ItemType is the primary vocabulary type of the collection members,
	// empty when the target is not registered.
	ItemType string
}

// Operation describes one advertised operation.
type Operation struct {
	Name   string
	Label  string
	Method string
	Target string

	// FormURL is empty when the operation accepts no body.
	FormURL string
}

// OperationMapper writes operation descriptors.
type OperationMapper interface {
	// OnStartOperation creates and returns the descriptor node for op.
	OnStartOperation(doc *document.Node, op Operation) *document.Node
	MapOperationFormURL(opNode *document.Node, url string)
	OnFinishOperation(doc, opNode *document.Node, op Operation)
}

// SingleModelMapper writes one resource instance. The same mapper writes
// embedded resources and nested objects into the child nodes it returns.
type SingleModelMapper interface {
	OperationMapper

	OnStart(doc *document.Node)
	MapSelfURL(doc *document.Node, url string)
	MapTypes(doc *document.Node, types []string)

	MapBoolean(doc *document.Node, key string, v bool)
	MapBooleanList(doc *document.Node, key string, v []bool)
	MapString(doc *document.Node, key string, v string)
	MapStringList(doc *document.Node, key string, v []string)
	MapNumber(doc *document.Node, key string, v float64)
	MapNumberList(doc *document.Node, key string, v []float64)
	MapDate(doc *document.Node, key string, v time.Time)
	MapBinaryURL(doc *document.Node, key string, url string)
	MapRelativeURL(doc *document.Node, key string, url string)
	MapLocalizedString(doc *document.Node, key string, v string)
	MapLink(doc *document.Node, key string, url string)

	MapRelation(doc *document.Node, rel Relation)
	// OnStartEmbedded returns the node the embedded resource is written into.
	OnStartEmbedded(doc *document.Node, rel Relation) *document.Node
	OnFinishEmbedded(doc, embedded *document.Node, rel Relation)

	MapRelatedCollection(doc *document.Node, c Collection)

	// OnStartNested returns the node a nested object is written into.
	OnStartNested(doc *document.Node, key string) *document.Node
	OnFinishNested(doc, nested *document.Node, key string)
	// OnStartNestedListItem returns the node for one element of a nested list.
	OnStartNestedListItem(doc *document.Node, key string) *document.Node
	OnFinishNestedListItem(doc, item *document.Node, key string)

	OnFinish(doc *document.Node)
}

// Enveloper is implemented by single model mappers whose format wraps the
// root resource in a top-level document. The writer calls Envelope once
// the walk is complete.
type Enveloper interface {
	Envelope(resource *document.Node) *document.Node
}

// PageLinks are the navigation URLs of a page.
type PageLinks struct {
	Collection string
	Current    string
	First      string
	Last       string
	Next       string
	Previous   string
}

// PageMapper writes one page of a collection.
type PageMapper interface {
	OperationMapper

	OnStart(doc *document.Node, links PageLinks)
	MapTotalCount(doc *document.Node, n int)
	MapItemCount(doc *document.Node, n int)
	MapPageLinks(doc *document.Node, links PageLinks)
	// OnStartItem returns the node one member is written into.
	OnStartItem(doc *document.Node) *document.Node
	OnFinishItem(doc, item *document.Node)
	// ItemMapper writes the members.
	ItemMapper() SingleModelMapper
	OnFinish(doc *document.Node)
}

// FormMapper writes a form description.
type FormMapper interface {
	OnStart(doc *document.Node, url string, d form.Description)
	MapTitle(doc *document.Node, title string)
	MapDescription(doc *document.Node, description string)
	MapField(doc *document.Node, f form.FieldDescriptor)
	OnFinish(doc *document.Node)
}

// Problem is an error description.
type Problem struct {
	Type        string
	Title       string
	Description string
	Status      int
	Instance    string
	Fields      map[string]string
}

// ErrorMapper writes an error document.
type ErrorMapper interface {
	OnStart(doc *document.Node)
	MapProblem(doc *document.Node, p Problem)
	OnFinish(doc *document.Node)
}

// Property documents one field of a resource.
type Property struct {
	Key   string
	Group string

	// Target is the vocabulary type of related resources, empty for scalars.
	Target string
}

// ResourceDoc documents one registered resource.
type ResourceDoc struct {
	Name       string
	Types      []string
	URL        string
	Properties []Property
	Operations []Operation
}

// DocumentationMapper writes the API documentation document.
type DocumentationMapper interface {
	OnStart(doc *document.Node, url, title, description string)
	// OnStartResource returns the node a resource is documented into.
	OnStartResource(doc *document.Node, r ResourceDoc) *document.Node
	MapProperty(resource *document.Node, p Property)
	MapResourceOperation(resource *document.Node, op Operation)
	OnFinishResource(doc, resource *document.Node, r ResourceDoc)
	OnFinish(doc *document.Node)
}

// Format bundles the mappers of one wire format.
type Format interface {
	// MediaType is the content type of documents in this format.
	MediaType() string
	SingleModel() SingleModelMapper
	Page() PageMapper
	Form() FormMapper
	Error() ErrorMapper
	Documentation() DocumentationMapper
}
