package jsonapi

import (
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
)

// FormMapper writes a form description as a "form" resource object.
type FormMapper struct{}

var _ mapper.FormMapper = FormMapper{}

func data(doc *document.Node) *document.Node {
	return doc.Object(KeyData)
}

func (FormMapper) OnStart(doc *document.Node, url string, d form.Description) {
	top(doc)
	links(doc).Set("self", url)
	data(doc).Set(KeyType, "form").Set(KeyID, d.ID)
}

func (FormMapper) MapTitle(doc *document.Node, title string) {
	data(doc).Object(KeyAttributes).Set("title", title)
}

func (FormMapper) MapDescription(doc *document.Node, description string) {
	data(doc).Object(KeyAttributes).Set("description", description)
}

func (FormMapper) MapField(doc *document.Node, f form.FieldDescriptor) {
	n := data(doc).Object(KeyAttributes).Array("fields").AppendObject()
	n.Set("name", f.Name)
	n.Set("type", string(f.Type))
	n.Set("required", f.Required)
}

func (FormMapper) OnFinish(doc *document.Node) {
	data(doc).Object(KeyAttributes).Array("fields")
}

// DocumentationMapper lists each registered resource as a "resource"
// resource object.
type DocumentationMapper struct{}

var _ mapper.DocumentationMapper = DocumentationMapper{}

func (DocumentationMapper) OnStart(doc *document.Node, url, title, description string) {
	top(doc)
	links(doc).Set("self", url)
	if title != "" {
		doc.Object(KeyMeta).Set("title", title)
	}
	if description != "" {
		doc.Object(KeyMeta).Set("description", description)
	}
	doc.Array(KeyData)
}

func (DocumentationMapper) OnStartResource(doc *document.Node, r mapper.ResourceDoc) *document.Node {
	n := doc.Array(KeyData).AppendObject()
	n.Set(KeyType, "resource").Set(KeyID, r.Name)
	links(n).Set("self", r.URL)
	n.Object(KeyAttributes).Set("types", r.Types)
	return n
}

func (DocumentationMapper) MapProperty(resource *document.Node, p mapper.Property) {
	n := resource.Object(KeyAttributes).Array("properties").AppendObject()
	n.Set("name", p.Key)
	n.Set("kind", p.Group)
	if p.Target != "" {
		n.Set("target", p.Target)
	}
}

func (DocumentationMapper) MapResourceOperation(resource *document.Node, op mapper.Operation) {
	n := resource.Object(KeyAttributes).Array("operations").AppendObject()
	n.Set("name", op.Name)
	n.Set("method", op.Method)
	n.Set("href", op.Target)
	if op.FormURL != "" {
		n.Set("form", op.FormURL)
	}
}

func (DocumentationMapper) OnFinishResource(_, _ *document.Node, _ mapper.ResourceDoc) {}

func (DocumentationMapper) OnFinish(*document.Node) {}
