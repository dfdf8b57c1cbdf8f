package jsonapi

import (
	"strings"
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// operations writes affordances into meta.operations.
type operations struct{}

func (operations) OnStartOperation(doc *document.Node, op mapper.Operation) *document.Node {
	n := doc.Object(KeyMeta).Array("operations").AppendObject()
	n.Set("name", op.Name)
	n.Set("label", strings.ToLower(op.Label))
	n.Set("method", op.Method)
	n.Set("href", op.Target)
	return n
}

func (operations) MapOperationFormURL(opNode *document.Node, url string) {
	opNode.Set("form", url)
}

func (operations) OnFinishOperation(_, _ *document.Node, _ mapper.Operation) {}

// SingleModelMapper writes resource objects. Nested objects are plain
// attribute values; the mapper remembers which nodes it handed out for
// them, so one instance serves one walk.
type SingleModelMapper struct {
	operations
	plain map[*document.Node]bool
}

var (
	_ mapper.SingleModelMapper = (*SingleModelMapper)(nil)
	_ mapper.Enveloper         = (*SingleModelMapper)(nil)
)

// NewSingleModelMapper returns a mapper for one document.
func NewSingleModelMapper() *SingleModelMapper {
	return &SingleModelMapper{plain: make(map[*document.Node]bool)}
}

func (m *SingleModelMapper) attributes(doc *document.Node) *document.Node {
	if m.plain[doc] {
		return doc
	}
	return doc.Object(KeyAttributes)
}

func (m *SingleModelMapper) relationship(doc *document.Node, key string) *document.Node {
	if m.plain[doc] {
		return doc.Object(key)
	}
	return doc.Object(KeyRelationships).Object(key)
}

func links(doc *document.Node) *document.Node {
	return doc.Object(KeyLinks)
}

// OnStart reserves the type member so it leads the resource object.
func (m *SingleModelMapper) OnStart(doc *document.Node) {
	doc.Set(KeyType, "")
}

func (m *SingleModelMapper) MapSelfURL(doc *document.Node, url string) {
	doc.Set(KeyID, idFromURL(url))
	links(doc).Set("self", url)
}

// MapTypes sets the primary type; further types go to meta.types.
func (m *SingleModelMapper) MapTypes(doc *document.Node, types []string) {
	if len(types) == 0 {
		return
	}
	doc.Set(KeyType, types[0])
	if len(types) > 1 && !m.plain[doc] {
		doc.Object(KeyMeta).Set("types", types)
	}
}

func (m *SingleModelMapper) MapBoolean(doc *document.Node, key string, v bool) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapBooleanList(doc *document.Node, key string, v []bool) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapString(doc *document.Node, key string, v string) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapStringList(doc *document.Node, key string, v []string) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapNumber(doc *document.Node, key string, v float64) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapNumberList(doc *document.Node, key string, v []float64) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapDate(doc *document.Node, key string, v time.Time) {
	m.attributes(doc).Set(key, v.UTC().Format(time.RFC3339))
}

func (m *SingleModelMapper) MapBinaryURL(doc *document.Node, key string, url string) {
	links(doc).Set(key, url)
}

func (m *SingleModelMapper) MapRelativeURL(doc *document.Node, key string, url string) {
	links(doc).Set(key, url)
}

func (m *SingleModelMapper) MapLocalizedString(doc *document.Node, key string, v string) {
	m.attributes(doc).Set(key, v)
}

func (m *SingleModelMapper) MapLink(doc *document.Node, key string, url string) {
	links(doc).Set(key, url)
}

// MapRelation writes a relationship with a related link and resource
// linkage. The linkage type matches the type of the embedded resource
// object.
func (m *SingleModelMapper) MapRelation(doc *document.Node, rel mapper.Relation) {
	r := m.startRelation(doc, rel)
	t := rel.Type
	if t == "" {
		t = rel.IdentifierType
	}
	r.Object(KeyData).Set(KeyType, t).Set(KeyID, idFromURL(rel.URL))
}

// OnStartEmbedded returns the relationship data node; the related resource
// object is written in place of the linkage.
func (m *SingleModelMapper) OnStartEmbedded(doc *document.Node, rel mapper.Relation) *document.Node {
	return m.startRelation(doc, rel).Object(KeyData)
}

func (m *SingleModelMapper) startRelation(doc *document.Node, rel mapper.Relation) *document.Node {
	r := m.relationship(doc, rel.Key)
	links(r).Set("related", rel.URL)
	if rel.InverseKey != "" {
		r.Object(KeyMeta).Set("inverse", rel.InverseKey)
	}
	return r
}

func (m *SingleModelMapper) OnFinishEmbedded(_, _ *document.Node, _ mapper.Relation) {}

func (m *SingleModelMapper) MapRelatedCollection(doc *document.Node, c mapper.Collection) {
	r := m.relationship(doc, c.Key)
	links(r).Set("related", c.URL)
	if c.ItemType != "" {
		r.Object(KeyMeta).Set("itemType", c.ItemType)
	}
}

func (m *SingleModelMapper) OnStartNested(doc *document.Node, key string) *document.Node {
	n := m.attributes(doc).Object(key)
	m.plain[n] = true
	return n
}

func (m *SingleModelMapper) OnFinishNested(_, _ *document.Node, _ string) {}

func (m *SingleModelMapper) OnStartNestedListItem(doc *document.Node, key string) *document.Node {
	n := m.attributes(doc).Array(key).AppendObject()
	m.plain[n] = true
	return n
}

func (m *SingleModelMapper) OnFinishNestedListItem(_, _ *document.Node, _ string) {}

func (m *SingleModelMapper) OnFinish(*document.Node) {}

// Envelope wraps the root resource object in a top-level document.
func (m *SingleModelMapper) Envelope(resource *document.Node) *document.Node {
	doc := document.NewObject()
	top(doc)
	if self, ok := resource.Lookup(KeyLinks, "self"); ok {
		links(doc).Set("self", self)
	}
	doc.Set(KeyData, resource)
	return doc
}

// PageMapper writes a collection document with the members under data.
type PageMapper struct {
	operations
	items *SingleModelMapper
}

var _ mapper.PageMapper = (*PageMapper)(nil)

// NewPageMapper returns a mapper for one page document.
func NewPageMapper() *PageMapper {
	return &PageMapper{items: NewSingleModelMapper()}
}

func (p *PageMapper) OnStart(doc *document.Node, l mapper.PageLinks) {
	top(doc)
	links(doc).Set("self", l.Current)
	doc.Object(KeyMeta)
	doc.Array(KeyData)
}

func (p *PageMapper) MapTotalCount(doc *document.Node, n int) {
	doc.Object(KeyMeta).Set("total", n)
}

func (p *PageMapper) MapItemCount(doc *document.Node, n int) {
	doc.Object(KeyMeta).Set("count", n)
}

func (p *PageMapper) MapPageLinks(doc *document.Node, l mapper.PageLinks) {
	ln := links(doc)
	ln.Set("first", l.First)
	ln.Set("last", l.Last)
	if l.Previous != "" {
		ln.Set("prev", l.Previous)
	}
	if l.Next != "" {
		ln.Set("next", l.Next)
	}
	ln.Set("collection", l.Collection)
}

func (p *PageMapper) OnStartItem(doc *document.Node) *document.Node {
	return doc.Array(KeyData).AppendObject()
}

func (p *PageMapper) OnFinishItem(_, _ *document.Node) {}

func (p *PageMapper) ItemMapper() mapper.SingleModelMapper {
	return p.items
}

func (p *PageMapper) OnFinish(*document.Node) {}
