package writer

import (
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
)

// WriteForm writes the description of f so clients can fetch its shape
// before submitting.
func (w *Writer) WriteForm(req Request, fm mapper.FormMapper, f form.Schema) *document.Node {
	start := time.Now()

	d := f.Describe(req.Language)
	doc := document.NewObject()

	fm.OnStart(doc, URLs{Server: req.ServerURL}.Form(d.ID), d)
	if d.Title != "" {
		fm.MapTitle(doc, d.Title)
	}
	if d.Description != "" {
		fm.MapDescription(doc, d.Description)
	}
	for _, fd := range d.Fields {
		fm.MapField(doc, fd)
	}
	fm.OnFinish(doc)

	w.observer.DocumentWritten("form", time.Since(start))
	return doc
}

// WriteError writes a problem document.
func (w *Writer) WriteError(em mapper.ErrorMapper, p mapper.Problem) *document.Node {
	doc := document.NewObject()
	em.OnStart(doc)
	em.MapProblem(doc, p)
	em.OnFinish(doc)

	w.observer.DocumentWritten("error", 0)
	return doc
}
