package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/pagination"
)

// WritePage writes one page of a collection of identifierType. segments is
// the raw collection path, e.g. ["blog-postings"] or
// ["people", "ada", "blog-postings"]; it gives the page URLs and the
// collection-level operations.
func (w *Writer) WritePage(ctx context.Context, req Request, pm mapper.PageMapper, page pagination.Page[any], identifierType string, segments ...string) (*document.Node, error) {
	start := time.Now()

	rep, ok := w.schema.Representor(identifierType)
	if !ok {
		return nil, fmt.Errorf("write page of %q: %w", identifierType, ErrNoRepresentor)
	}

	st := w.newWalk(ctx, req)
	collection := st.urls.Resource(JoinSegments(segments...))
	nav := page.Links(collection)
	links := mapper.PageLinks{
		Collection: collection,
		Current:    nav.Self,
		First:      nav.First,
		Last:       nav.Last,
		Next:       nav.Next,
		Previous:   nav.Previous,
	}

	doc := document.NewObject()
	pm.OnStart(doc, links)
	pm.MapTotalCount(doc, page.TotalCount)
	pm.MapItemCount(doc, len(page.Items))

	im := pm.ItemMapper()
	for _, item := range page.Items {
		child := pm.OnStartItem(doc)
		w.writeModel(st, im, child, rep, item, "")
		pm.OnFinishItem(doc, child)
	}

	pm.MapPageLinks(doc, links)

	if len(segments) > 0 {
		w.writeOperations(st, pm, doc, segments)
	}

	pm.OnFinish(doc)

	w.observer.DocumentWritten("page", time.Since(start))
	return doc, nil
}
