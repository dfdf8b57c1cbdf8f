// Package hal implements HAL message mappers, with HAL-FORMS style
// templates for operations and RFC 7807 problem documents for errors.
package hal

import (
	"strings"
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
)

// MediaType is the content type of HAL documents.
const MediaType = "application/hal+json"

// Reserved HAL keys.
const (
	KeyLinks     = "_links"
	KeyEmbedded  = "_embedded"
	KeyTemplates = "_templates"
	KeyHref      = "href"
	KeySelf      = "self"
)

func link(doc *document.Node, rel, href string) *document.Node {
	l := doc.Object(KeyLinks).Object(rel)
	l.Set(KeyHref, href)
	return l
}

// SingleModelMapper writes resources as HAL objects.
type SingleModelMapper struct{}

var _ mapper.SingleModelMapper = SingleModelMapper{}

func (SingleModelMapper) OnStart(*document.Node) {}

func (SingleModelMapper) MapSelfURL(doc *document.Node, url string) {
	link(doc, KeySelf, url)
}

// MapTypes writes the vocabulary types as a plain property; HAL has no
// type vocabulary of its own.
func (SingleModelMapper) MapTypes(doc *document.Node, types []string) {
	doc.Set("types", types)
}

func (SingleModelMapper) MapBoolean(doc *document.Node, key string, v bool) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapBooleanList(doc *document.Node, key string, v []bool) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapString(doc *document.Node, key string, v string) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapStringList(doc *document.Node, key string, v []string) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapNumber(doc *document.Node, key string, v float64) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapNumberList(doc *document.Node, key string, v []float64) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapDate(doc *document.Node, key string, v time.Time) {
	doc.Set(key, v.UTC().Format(time.RFC3339))
}

func (SingleModelMapper) MapBinaryURL(doc *document.Node, key string, url string) {
	link(doc, key, url)
}

func (SingleModelMapper) MapRelativeURL(doc *document.Node, key string, url string) {
	link(doc, key, url)
}

func (SingleModelMapper) MapLocalizedString(doc *document.Node, key string, v string) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapLink(doc *document.Node, key string, url string) {
	link(doc, key, url)
}

func (SingleModelMapper) MapRelation(doc *document.Node, rel mapper.Relation) {
	relationLink(doc, rel)
}

func (SingleModelMapper) OnStartEmbedded(doc *document.Node, rel mapper.Relation) *document.Node {
	relationLink(doc, rel)
	return doc.Object(KeyEmbedded).Object(rel.Key)
}

func (SingleModelMapper) OnFinishEmbedded(_, _ *document.Node, _ mapper.Relation) {}

// relationLink names bidirectional links after their inverse collection.
func relationLink(doc *document.Node, rel mapper.Relation) {
	l := link(doc, rel.Key, rel.URL)
	if rel.InverseKey != "" {
		l.Set("name", rel.InverseKey)
	}
}

func (SingleModelMapper) MapRelatedCollection(doc *document.Node, c mapper.Collection) {
	l := link(doc, c.Key, c.URL)
	if c.ItemType != "" {
		l.Set("type", c.ItemType)
	}
}

func (SingleModelMapper) OnStartNested(doc *document.Node, key string) *document.Node {
	return doc.Object(key)
}

func (SingleModelMapper) OnFinishNested(_, _ *document.Node, _ string) {}

func (SingleModelMapper) OnStartNestedListItem(doc *document.Node, key string) *document.Node {
	return doc.Array(key).AppendObject()
}

func (SingleModelMapper) OnFinishNestedListItem(_, _ *document.Node, _ string) {}

func (SingleModelMapper) OnStartOperation(doc *document.Node, op mapper.Operation) *document.Node {
	t := doc.Object(KeyTemplates).Object(strings.ToLower(op.Label))
	t.Set("title", op.Name)
	t.Set("method", op.Method)
	t.Set("target", op.Target)
	return t
}

func (SingleModelMapper) MapOperationFormURL(opNode *document.Node, url string) {
	opNode.Set("contentType", "application/json")
	link(opNode, "form", url)
}

func (SingleModelMapper) OnFinishOperation(_, _ *document.Node, _ mapper.Operation) {}

func (SingleModelMapper) OnFinish(*document.Node) {}

// PageMapper writes pages with members under _embedded.items.
type PageMapper struct {
	SingleModelMapper
}

var _ mapper.PageMapper = PageMapper{}

func (PageMapper) OnStart(doc *document.Node, links mapper.PageLinks) {
	link(doc, KeySelf, links.Current)
	link(doc, "collection", links.Collection)
}

func (PageMapper) MapTotalCount(doc *document.Node, n int) {
	doc.Set("total", n)
}

func (PageMapper) MapItemCount(doc *document.Node, n int) {
	doc.Set("count", n)
}

func (PageMapper) MapPageLinks(doc *document.Node, links mapper.PageLinks) {
	link(doc, "first", links.First)
	link(doc, "last", links.Last)
	if links.Next != "" {
		link(doc, "next", links.Next)
	}
	if links.Previous != "" {
		link(doc, "prev", links.Previous)
	}
}

func (PageMapper) OnStartItem(doc *document.Node) *document.Node {
	return doc.Object(KeyEmbedded).Array("items").AppendObject()
}

func (PageMapper) OnFinishItem(_, _ *document.Node) {}

func (PageMapper) ItemMapper() mapper.SingleModelMapper {
	return SingleModelMapper{}
}

func (PageMapper) OnFinish(doc *document.Node) {
	doc.Object(KeyEmbedded).Array("items")
}

// FormMapper writes form descriptions.
type FormMapper struct{}

var _ mapper.FormMapper = FormMapper{}

func (FormMapper) OnStart(doc *document.Node, url string, d form.Description) {
	link(doc, KeySelf, url)
	doc.Set("id", d.ID)
}

func (FormMapper) MapTitle(doc *document.Node, title string) {
	doc.Set("title", title)
}

func (FormMapper) MapDescription(doc *document.Node, description string) {
	doc.Set("description", description)
}

func (FormMapper) MapField(doc *document.Node, f form.FieldDescriptor) {
	p := doc.Array("properties").AppendObject()
	p.Set("name", f.Name)
	p.Set("required", f.Required)
	p.Set("type", string(f.Type))
}

func (FormMapper) OnFinish(doc *document.Node) {
	doc.Array("properties")
}

// ErrorMapper writes RFC 7807 problem documents.
type ErrorMapper struct{}

var _ mapper.ErrorMapper = ErrorMapper{}

func (ErrorMapper) OnStart(*document.Node) {}

func (ErrorMapper) MapProblem(doc *document.Node, p mapper.Problem) {
	typ := p.Type
	if typ == "" {
		typ = "about:blank"
	}
	doc.Set("type", typ)
	doc.Set("title", p.Title)
	doc.Set("status", p.Status)
	if p.Description != "" {
		doc.Set("detail", p.Description)
	}
	if p.Instance != "" {
		doc.Set("instance", p.Instance)
	}
	if len(p.Fields) > 0 {
		doc.Set("errors", p.Fields)
	}
}

func (ErrorMapper) OnFinish(*document.Node) {}

// DocumentationMapper lists resources under _embedded.resources.
type DocumentationMapper struct{}

var _ mapper.DocumentationMapper = DocumentationMapper{}

func (DocumentationMapper) OnStart(doc *document.Node, url, title, description string) {
	link(doc, KeySelf, url)
	if title != "" {
		doc.Set("title", title)
	}
	if description != "" {
		doc.Set("description", description)
	}
}

func (DocumentationMapper) OnStartResource(doc *document.Node, r mapper.ResourceDoc) *document.Node {
	n := doc.Object(KeyEmbedded).Array("resources").AppendObject()
	link(n, KeySelf, r.URL)
	n.Set("name", r.Name)
	n.Set("types", r.Types)
	return n
}

func (DocumentationMapper) MapProperty(resource *document.Node, p mapper.Property) {
	n := resource.Array("properties").AppendObject()
	n.Set("name", p.Key)
	n.Set("kind", p.Group)
	if p.Target != "" {
		n.Set("target", p.Target)
	}
}

func (DocumentationMapper) MapResourceOperation(resource *document.Node, op mapper.Operation) {
	n := resource.Array("operations").AppendObject()
	n.Set("name", op.Name)
	n.Set("method", op.Method)
	n.Set("target", op.Target)
	if op.FormURL != "" {
		link(n, "form", op.FormURL)
	}
}

func (DocumentationMapper) OnFinishResource(_, _ *document.Node, _ mapper.ResourceDoc) {}

func (DocumentationMapper) OnFinish(*document.Node) {}

// Format bundles the HAL mappers.
type Format struct{}

var _ mapper.Format = Format{}

func (Format) MediaType() string                         { return MediaType }
func (Format) SingleModel() mapper.SingleModelMapper     { return SingleModelMapper{} }
func (Format) Page() mapper.PageMapper                   { return PageMapper{} }
func (Format) Form() mapper.FormMapper                   { return FormMapper{} }
func (Format) Error() mapper.ErrorMapper                 { return ErrorMapper{} }
func (Format) Documentation() mapper.DocumentationMapper { return DocumentationMapper{} }
