package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/representor"
)

// walk is the transient state of one write.
type walk struct {
	ctx    context.Context
	req    Request
	urls   URLs
	embeds embedSet
}

func (w *Writer) newWalk(ctx context.Context, req Request) *walk {
	return &walk{
		ctx:    ctx,
		req:    req,
		urls:   URLs{Server: req.ServerURL},
		embeds: newEmbedSet(req.Embedded, req.maxDepth()),
	}
}

// WriteDocument writes model, a resource of identifierType, through m.
func (w *Writer) WriteDocument(ctx context.Context, req Request, m mapper.SingleModelMapper, model any, identifierType string) (*document.Node, error) {
	start := time.Now()

	rep, ok := w.schema.Representor(identifierType)
	if !ok {
		return nil, fmt.Errorf("write %q: %w", identifierType, ErrNoRepresentor)
	}

	doc := document.NewObject()
	w.writeModel(w.newWalk(ctx, req), m, doc, rep, model, "")
	if e, ok := m.(mapper.Enveloper); ok {
		doc = e.Envelope(doc)
	}

	w.observer.DocumentWritten("single", time.Since(start))
	return doc, nil
}

// writeModel runs the full resource walk into doc. path is the dotted
// embedding path of the resource, empty at the root.
func (w *Writer) writeModel(st *walk, m mapper.SingleModelMapper, doc *document.Node, rep *representor.Representor, model any, path string) {
	m.OnStart(doc)

	resourcePath, hasPath := w.resourcePath(rep, model)
	if hasPath {
		m.MapSelfURL(doc, st.urls.Resource(resourcePath))
	} else {
		w.logger.Debug().
			Str("type", rep.IdentifierType()).
			Msg("resource has no resolvable path")
	}
	m.MapTypes(doc, rep.Types())

	w.writeBody(st, m, doc, rep, model, path, resourcePath)

	if hasPath {
		w.writeOperations(st, m, doc, Segments(resourcePath))
	}

	m.OnFinish(doc)
}

func (w *Writer) resourcePath(rep *representor.Representor, model any) (string, bool) {
	id, ok := rep.Identifier(model)
	if !ok {
		return "", false
	}
	return w.schema.Path(rep.IdentifierType(), id)
}

// writeBody writes the fields shared by resources and nested objects.
// resourcePath is empty for nested objects.
func (w *Writer) writeBody(st *walk, m mapper.SingleModelMapper, doc *document.Node, rep *representor.Representor, model any, path, resourcePath string) {
	keep := st.req.Fields.For(rep.Types())

	for _, group := range representor.Groups {
		for _, f := range rep.Fields(group) {
			if !keep(f.Key) {
				continue
			}
			v, ok := f.Value(model, st.req.Language)
			if !ok {
				continue
			}
			w.writeScalar(st, m, doc, f, v, resourcePath)
		}
	}

	for _, l := range rep.Links() {
		if keep(l.Key) {
			m.MapLink(doc, l.Key, l.URL)
		}
	}

	for _, rm := range rep.RelatedModels() {
		if keep(rm.Key) {
			w.writeRelation(st, m, doc, rm, model, path)
		}
	}

	if resourcePath != "" {
		for _, rc := range rep.RelatedCollections() {
			if keep(rc.Key) {
				w.writeCollection(st, m, doc, rc, resourcePath)
			}
		}
	}

	for _, nf := range rep.NestedFields() {
		if !keep(nf.Key) {
			continue
		}
		v, ok := nf.Value(model)
		if !ok || v == nil {
			continue
		}
		child := m.OnStartNested(doc, nf.Key)
		w.writeNested(st, m, child, nf.Representor, v, join(path, nf.Key))
		m.OnFinishNested(doc, child, nf.Key)
	}

	for _, nf := range rep.NestedListFields() {
		if !keep(nf.Key) {
			continue
		}
		for _, v := range nf.Values(model) {
			item := m.OnStartNestedListItem(doc, nf.Key)
			w.writeNested(st, m, item, nf.Representor, v, join(path, nf.Key))
			m.OnFinishNestedListItem(doc, item, nf.Key)
		}
	}
}

func (w *Writer) writeNested(st *walk, m mapper.SingleModelMapper, doc *document.Node, rep *representor.Representor, model any, path string) {
	if types := rep.Types(); len(types) > 0 {
		m.MapTypes(doc, types)
	}
	w.writeBody(st, m, doc, rep, model, path, "")
}

func (w *Writer) writeScalar(st *walk, m mapper.SingleModelMapper, doc *document.Node, f representor.ScalarField, v any, resourcePath string) {
	switch f.Group {
	case representor.GroupBoolean:
		m.MapBoolean(doc, f.Key, v.(bool))
	case representor.GroupBooleanList:
		m.MapBooleanList(doc, f.Key, v.([]bool))
	case representor.GroupString:
		m.MapString(doc, f.Key, v.(string))
	case representor.GroupStringList:
		m.MapStringList(doc, f.Key, v.([]string))
	case representor.GroupNumber:
		m.MapNumber(doc, f.Key, v.(float64))
	case representor.GroupNumberList:
		m.MapNumberList(doc, f.Key, v.([]float64))
	case representor.GroupDate:
		m.MapDate(doc, f.Key, v.(time.Time))
	case representor.GroupBinaryFile:
		if resourcePath == "" {
			w.logger.Debug().Str("key", f.Key).Msg("binary field without resource path omitted")
			return
		}
		m.MapBinaryURL(doc, f.Key, st.urls.Binary(resourcePath, f.Key))
	case representor.GroupRelativeURL:
		m.MapRelativeURL(doc, f.Key, st.urls.Relative(v.(string)))
	case representor.GroupLocalizedString:
		m.MapLocalizedString(doc, f.Key, v.(string))
	}
}

func (w *Writer) writeRelation(st *walk, m mapper.SingleModelMapper, doc *document.Node, rm representor.RelatedModel, model any, path string) {
	id, ok := rm.Identifier(model)
	if !ok {
		return
	}

	target, ok := w.schema.Path(rm.IdentifierType, id)
	if !ok {
		w.logger.Debug().
			Str("key", rm.Key).
			Str("target", rm.IdentifierType).
			Msg("related model has no resolvable URL, omitted")
		w.observer.RelationOmitted(OmitNoURL)
		return
	}

	targetRep, registered := w.schema.Representor(rm.IdentifierType)
	rel := mapper.Relation{
		Key:            rm.Key,
		URL:            st.urls.Resource(target),
		IdentifierType: rm.IdentifierType,
		InverseKey:     rm.InverseKey,
	}
	if registered {
		rel.Type = targetRep.PrimaryType()
	}

	embedPath := join(path, rm.Key)
	embed, tooDeep := st.embeds.embed(embedPath)
	if tooDeep {
		w.logger.Debug().Str("path", embedPath).Msg("embedding path exceeds depth limit")
		w.observer.RelationOmitted(OmitDepthLimit)
	}
	if !embed || w.fetcher == nil {
		m.MapRelation(doc, rel)
		return
	}

	if !registered {
		w.observer.RelationOmitted(OmitNoRepresentor)
		m.MapRelation(doc, rel)
		return
	}

	related, err := w.fetcher.Fetch(st.ctx, rm.IdentifierType, id)
	if err != nil || related == nil {
		w.logger.Debug().
			Err(err).
			Str("path", embedPath).
			Msg("embedding fetch failed, writing link only")
		w.observer.RelationOmitted(OmitFetchFailed)
		m.MapRelation(doc, rel)
		return
	}

	child := m.OnStartEmbedded(doc, rel)
	w.writeModel(st, m, child, targetRep, related, embedPath)
	m.OnFinishEmbedded(doc, child, rel)
	w.observer.ResourceEmbedded(rm.IdentifierType)
}

func (w *Writer) writeCollection(st *walk, m mapper.SingleModelMapper, doc *document.Node, rc representor.RelatedCollection, resourcePath string) {
	name, ok := w.schema.Name(rc.IdentifierType)
	if !ok {
		w.logger.Debug().
			Str("key", rc.Key).
			Str("target", rc.IdentifierType).
			Msg("related collection has no resolvable URL, omitted")
		w.observer.RelationOmitted(OmitNoURL)
		return
	}

	c := mapper.Collection{
		Key: rc.Key,
		URL: st.urls.Collection(resourcePath, name),
	}
	if targetRep, ok := w.schema.Representor(rc.IdentifierType); ok {
		c.ItemType = targetRep.PrimaryType()
	}
	m.MapRelatedCollection(doc, c)
}

func (w *Writer) writeOperations(st *walk, om mapper.OperationMapper, doc *document.Node, segments []string) {
	if w.affordances == nil {
		return
	}
	target := st.urls.Resource(JoinSegments(segments...))
	for _, op := range w.affordances.ComputeOperations(st.ctx, st.req.credentials(), segments...) {
		w.writeOperation(st, om, doc, op, target)
	}
}

func (w *Writer) writeOperation(st *walk, om mapper.OperationMapper, doc *document.Node, op affordance.Operation, target string) {
	mop := mapper.Operation{
		Name:   op.Name,
		Label:  op.Label,
		Method: op.Method,
		Target: target,
	}
	if op.Form != nil {
		mop.FormURL = st.urls.Form(op.Form.ID())
	}

	n := om.OnStartOperation(doc, mop)
	if mop.FormURL != "" {
		om.MapOperationFormURL(n, mop.FormURL)
	}
	om.OnFinishOperation(doc, n, mop)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
