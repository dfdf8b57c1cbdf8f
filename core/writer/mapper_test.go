package writer

import (
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
)

// plainMapper writes keys as declared, with no format vocabulary.
type plainMapper struct{}

func (plainMapper) OnStart(*document.Node) {}

func (plainMapper) MapSelfURL(doc *document.Node, url string)       { doc.Set("self", url) }
func (plainMapper) MapTypes(doc *document.Node, types []string)     { doc.Set("types", types) }
func (plainMapper) MapBoolean(doc *document.Node, k string, v bool) { doc.Set(k, v) }
func (plainMapper) MapBooleanList(doc *document.Node, k string, v []bool) {
	doc.Set(k, v)
}
func (plainMapper) MapString(doc *document.Node, k string, v string)       { doc.Set(k, v) }
func (plainMapper) MapStringList(doc *document.Node, k string, v []string) { doc.Set(k, v) }
func (plainMapper) MapNumber(doc *document.Node, k string, v float64)      { doc.Set(k, v) }
func (plainMapper) MapNumberList(doc *document.Node, k string, v []float64) {
	doc.Set(k, v)
}
func (plainMapper) MapDate(doc *document.Node, k string, v time.Time) {
	doc.Set(k, v.Format(time.RFC3339))
}
func (plainMapper) MapBinaryURL(doc *document.Node, k, url string)            { doc.Set(k, url) }
func (plainMapper) MapRelativeURL(doc *document.Node, k, url string)          { doc.Set(k, url) }
func (plainMapper) MapLocalizedString(doc *document.Node, k string, v string) { doc.Set(k, v) }
func (plainMapper) MapLink(doc *document.Node, k, url string)                 { doc.Set(k, url) }

func (plainMapper) MapRelation(doc *document.Node, rel mapper.Relation) {
	doc.Set(rel.Key, rel.URL)
}

func (plainMapper) OnStartEmbedded(doc *document.Node, rel mapper.Relation) *document.Node {
	return doc.Object(rel.Key)
}

func (plainMapper) OnFinishEmbedded(_, _ *document.Node, _ mapper.Relation) {}

func (plainMapper) MapRelatedCollection(doc *document.Node, c mapper.Collection) {
	doc.Set(c.Key, c.URL)
}

func (plainMapper) OnStartNested(doc *document.Node, key string) *document.Node {
	return doc.Object(key)
}

func (plainMapper) OnFinishNested(_, _ *document.Node, _ string) {}

func (plainMapper) OnStartNestedListItem(doc *document.Node, key string) *document.Node {
	return doc.Array(key).AppendObject()
}

func (plainMapper) OnFinishNestedListItem(_, _ *document.Node, _ string) {}

func (plainMapper) OnStartOperation(doc *document.Node, op mapper.Operation) *document.Node {
	n := doc.Array("operations").AppendObject()
	n.Set("name", op.Name)
	n.Set("method", op.Method)
	return n
}

func (plainMapper) MapOperationFormURL(n *document.Node, url string) { n.Set("form", url) }

func (plainMapper) OnFinishOperation(_, _ *document.Node, _ mapper.Operation) {}

func (plainMapper) OnFinish(*document.Node) {}

type plainPage struct{ plainMapper }

func (plainPage) OnStart(doc *document.Node, links mapper.PageLinks) {
	doc.Set("collection", links.Collection)
}
func (plainPage) MapTotalCount(doc *document.Node, n int) { doc.Set("total", n) }
func (plainPage) MapItemCount(doc *document.Node, n int)  { doc.Set("count", n) }

func (plainPage) MapPageLinks(doc *document.Node, links mapper.PageLinks) {
	for k, v := range map[string]string{
		"first": links.First, "last": links.Last, "next": links.Next, "previous": links.Previous,
	} {
		if v != "" {
			doc.Set(k, v)
		}
	}
}

func (plainPage) OnStartItem(doc *document.Node) *document.Node {
	return doc.Array("items").AppendObject()
}
func (plainPage) OnFinishItem(_, _ *document.Node)     {}
func (plainPage) ItemMapper() mapper.SingleModelMapper { return plainMapper{} }

type plainForm struct{}

func (plainForm) OnStart(doc *document.Node, url string, d form.Description) {
	doc.Set("self", url)
}
func (plainForm) MapTitle(doc *document.Node, s string)       { doc.Set("title", s) }
func (plainForm) MapDescription(doc *document.Node, s string) { doc.Set("description", s) }
func (plainForm) MapField(doc *document.Node, f form.FieldDescriptor) {
	doc.Array("fields").AppendObject().Set("name", f.Name).Set("type", string(f.Type))
}
func (plainForm) OnFinish(*document.Node) {}

type plainError struct{}

func (plainError) OnStart(*document.Node) {}
func (plainError) MapProblem(doc *document.Node, p mapper.Problem) {
	doc.Set("title", p.Title).Set("status", p.Status)
}
func (plainError) OnFinish(*document.Node) {}

type plainDocs struct{}

func (plainDocs) OnStart(doc *document.Node, url, title, _ string) {
	doc.Set("self", url).Set("title", title)
}
func (plainDocs) OnStartResource(doc *document.Node, r mapper.ResourceDoc) *document.Node {
	return doc.Object(r.Name)
}
func (plainDocs) MapProperty(n *document.Node, p mapper.Property) {
	n.Array("properties").Append(p.Key)
}
func (plainDocs) MapResourceOperation(n *document.Node, op mapper.Operation) {
	n.Array("operations").Append(op.Name)
}
func (plainDocs) OnFinishResource(_, _ *document.Node, _ mapper.ResourceDoc) {}
func (plainDocs) OnFinish(*document.Node)                                    {}
