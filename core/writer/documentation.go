package writer

import (
	"context"
	"time"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
)

// Documentation is the static part of the API documentation.
type Documentation struct {
	Title       string
	Description string
}

// WriteDocumentation documents every registered resource: its types, its
// properties and the operations registered for it.
func (w *Writer) WriteDocumentation(ctx context.Context, req Request, dm mapper.DocumentationMapper, reg *registry.Registry, router *action.Router, info Documentation) *document.Node {
	start := time.Now()
	urls := URLs{Server: req.ServerURL}

	actions := make(map[string][]*action.Action)
	for _, a := range router.Actions() {
		actions[a.Key.Resource] = append(actions[a.Key.Resource], a)
	}

	doc := document.NewObject()
	dm.OnStart(doc, urls.Documentation(), info.Title, info.Description)

	for _, e := range reg.Entries() {
		rd := mapper.ResourceDoc{
			Name:       e.Name,
			Types:      e.Representor.Types(),
			URL:        urls.Resource(e.Name),
			Properties: w.properties(e.Representor),
		}
		for _, a := range actions[e.Name] {
			if !a.Permission.Allowed(ctx, req.credentials()) {
				continue
			}
			label := affordance.Label(a.Key.Method)
			resource := e.Name
			if a.Key.Nested != "" {
				resource = a.Key.Nested
			}
			op := mapper.Operation{
				Name:   convention.OperationName(resource, label),
				Label:  label,
				Method: a.Key.Method,
				Target: urls.Resource(a.Key.Path()),
			}
			if a.Form != nil {
				op.FormURL = urls.Form(a.Form.ID())
			}
			rd.Operations = append(rd.Operations, op)
		}

		node := dm.OnStartResource(doc, rd)
		for _, p := range rd.Properties {
			dm.MapProperty(node, p)
		}
		for _, op := range rd.Operations {
			dm.MapResourceOperation(node, op)
		}
		dm.OnFinishResource(doc, node, rd)
	}

	dm.OnFinish(doc)

	w.observer.DocumentWritten("documentation", time.Since(start))
	return doc
}

func (w *Writer) properties(rep *representor.Representor) []mapper.Property {
	var props []mapper.Property
	for _, group := range representor.Groups {
		for _, f := range rep.Fields(group) {
			props = append(props, mapper.Property{Key: f.Key, Group: group.String()})
		}
	}
	for _, l := range rep.Links() {
		props = append(props, mapper.Property{Key: l.Key, Group: "link"})
	}
	for _, rm := range rep.RelatedModels() {
		props = append(props, mapper.Property{Key: rm.Key, Group: "relation", Target: w.primaryType(rm.IdentifierType)})
	}
	for _, rc := range rep.RelatedCollections() {
		props = append(props, mapper.Property{Key: rc.Key, Group: "collection", Target: w.primaryType(rc.IdentifierType)})
	}
	for _, nf := range rep.NestedFields() {
		props = append(props, mapper.Property{Key: nf.Key, Group: "nested", Target: nf.Representor.PrimaryType()})
	}
	for _, nf := range rep.NestedListFields() {
		props = append(props, mapper.Property{Key: nf.Key, Group: "nested-list", Target: nf.Representor.PrimaryType()})
	}
	return props
}

func (w *Writer) primaryType(identifierType string) string {
	if rep, ok := w.schema.Representor(identifierType); ok {
		return rep.PrimaryType()
	}
	return ""
}
