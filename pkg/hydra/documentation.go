package hydra

import (
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// DocumentationMapper writes a hydra:ApiDocumentation.
type DocumentationMapper struct{}

var _ mapper.DocumentationMapper = DocumentationMapper{}

func (DocumentationMapper) OnStart(doc *document.Node, url, title, description string) {
	startContext(doc)
	doc.Set(KeyID, url)
	doc.Set(KeyType, TypeAPIDocumentation)
	if title != "" {
		doc.Set(TermTitle, title)
	}
	if description != "" {
		doc.Set(TermDescription, description)
	}
}

func (DocumentationMapper) OnStartResource(doc *document.Node, r mapper.ResourceDoc) *document.Node {
	n := doc.Array(TermSupportedClass).AppendObject()
	if len(r.Types) > 0 {
		n.Set(KeyID, SchemaOrg+r.Types[0])
	}
	n.Set(KeyType, TypeClass)
	n.Set(TermTitle, r.Name)
	n.Set(TermEntrypoint, r.URL)
	return n
}

func (DocumentationMapper) MapProperty(resource *document.Node, p mapper.Property) {
	n := resource.Array(TermSupportedProperty).AppendObject()
	n.Set(KeyType, TypeSupportedProperty)
	n.Set(TermProperty, p.Key)
	n.Set(TermRange, p.Group)
	if p.Target != "" {
		n.Set("target", p.Target)
	}
}

func (DocumentationMapper) MapResourceOperation(resource *document.Node, op mapper.Operation) {
	n := resource.Array(TermSupportedOperation).AppendObject()
	n.Set(KeyID, "_:"+op.Name)
	n.Set(KeyType, TypeOperation)
	n.Set(TermTitle, op.Label)
	n.Set(TermMethod, op.Method)
	if op.FormURL != "" {
		n.Set(TermExpects, op.FormURL)
	}
}

func (DocumentationMapper) OnFinishResource(_, _ *document.Node, _ mapper.ResourceDoc) {}

func (DocumentationMapper) OnFinish(doc *document.Node) {
	doc.Array(TermSupportedClass)
}
