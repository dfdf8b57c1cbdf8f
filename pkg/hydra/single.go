package hydra

import (
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// SingleModelMapper writes resources as JSON-LD nodes.
type SingleModelMapper struct{}

var _ mapper.SingleModelMapper = SingleModelMapper{}

func (SingleModelMapper) OnStart(doc *document.Node) {
	startContext(doc)
}

func (SingleModelMapper) MapSelfURL(doc *document.Node, url string) {
	doc.Set(KeyID, url)
}

func (SingleModelMapper) MapTypes(doc *document.Node, types []string) {
	doc.Set(KeyType, types)
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
	doc.Set(key, url)
	markIRI(doc, key)
}

func (SingleModelMapper) MapRelativeURL(doc *document.Node, key string, url string) {
	doc.Set(key, url)
	markIRI(doc, key)
}

func (SingleModelMapper) MapLocalizedString(doc *document.Node, key string, v string) {
	doc.Set(key, v)
}

func (SingleModelMapper) MapLink(doc *document.Node, key string, url string) {
	doc.Set(key, url)
	markIRI(doc, key)
}

func (SingleModelMapper) MapRelation(doc *document.Node, rel mapper.Relation) {
	doc.Set(rel.Key, rel.URL)
	relationTerms(doc, rel)
}

func (SingleModelMapper) OnStartEmbedded(doc *document.Node, rel mapper.Relation) *document.Node {
	relationTerms(doc, rel)
	return doc.Object(rel.Key)
}

func (SingleModelMapper) OnFinishEmbedded(_, embedded *document.Node, _ mapper.Relation) {
	reduceContext(embedded)
}

// relationTerms marks the relation as an IRI and, for bidirectional
// relations, declares the inverse key as its reverse property.
func relationTerms(doc *document.Node, rel mapper.Relation) {
	markIRI(doc, rel.Key)
	if rel.InverseKey != "" {
		terms(doc).Object(rel.InverseKey).Set(KeyReverse, rel.Key)
	}
}

func (SingleModelMapper) MapRelatedCollection(doc *document.Node, c mapper.Collection) {
	doc.Set(c.Key, c.URL)
	markIRI(doc, c.Key)
}

func (SingleModelMapper) OnStartNested(doc *document.Node, key string) *document.Node {
	return doc.Object(key)
}

func (SingleModelMapper) OnFinishNested(_, nested *document.Node, _ string) {
	reduceContext(nested)
}

func (SingleModelMapper) OnStartNestedListItem(doc *document.Node, key string) *document.Node {
	return doc.Array(key).AppendObject()
}

func (SingleModelMapper) OnFinishNestedListItem(_, item *document.Node, _ string) {
	reduceContext(item)
}

func (SingleModelMapper) OnStartOperation(doc *document.Node, op mapper.Operation) *document.Node {
	return startOperation(doc, op)
}

func (SingleModelMapper) MapOperationFormURL(opNode *document.Node, url string) {
	opNode.Set(TermExpects, url)
}

func (SingleModelMapper) OnFinishOperation(_, _ *document.Node, _ mapper.Operation) {}

func (SingleModelMapper) OnFinish(*document.Node) {}

func startOperation(doc *document.Node, op mapper.Operation) *document.Node {
	n := doc.Array(TermOperation).AppendObject()
	n.Set(KeyID, "_:"+op.Name)
	n.Set(KeyType, TypeOperation)
	n.Set(TermMethod, op.Method)
	n.Set(TermTarget, op.Target)
	return n
}
