package hydra

import (
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
)

// FormMapper writes forms as hydra:Class descriptions.
type FormMapper struct{}

var _ mapper.FormMapper = FormMapper{}

func (FormMapper) OnStart(doc *document.Node, url string, _ form.Description) {
	startContext(doc)
	doc.Set(KeyID, url)
	doc.Set(KeyType, TypeClass)
}

func (FormMapper) MapTitle(doc *document.Node, title string) {
	doc.Set(TermTitle, title)
}

func (FormMapper) MapDescription(doc *document.Node, description string) {
	doc.Set(TermDescription, description)
}

func (FormMapper) MapField(doc *document.Node, f form.FieldDescriptor) {
	p := doc.Array(TermSupportedProperty).AppendObject()
	p.Set(KeyType, TypeSupportedProperty)
	p.Set(TermProperty, f.Name)
	p.Set(TermRequired, f.Required)
	p.Set(TermRange, string(f.Type))
}

func (FormMapper) OnFinish(doc *document.Node) {
	doc.Array(TermSupportedProperty)
}

// ErrorMapper writes problems as hydra:Error documents.
type ErrorMapper struct{}

var _ mapper.ErrorMapper = ErrorMapper{}

func (ErrorMapper) OnStart(doc *document.Node) {
	startContext(doc)
	doc.Set(KeyType, TypeError)
}

func (ErrorMapper) MapProblem(doc *document.Node, p mapper.Problem) {
	if p.Instance != "" {
		doc.Set(KeyID, p.Instance)
	}
	if p.Type != "" {
		doc.Set("type", p.Type)
	}
	doc.Set(TermTitle, p.Title)
	if p.Description != "" {
		doc.Set(TermDescription, p.Description)
	}
	doc.Set(TermStatusCode, p.Status)
	if len(p.Fields) > 0 {
		doc.Set("invalidFields", p.Fields)
	}
}

func (ErrorMapper) OnFinish(*document.Node) {}
