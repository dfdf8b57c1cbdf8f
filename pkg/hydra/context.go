package hydra

import (
	"github.com/artpar/hyperapi/core/document"
)

// startContext writes the root context: schema.org as vocabulary plus the
// Hydra core context.
func startContext(doc *document.Node) {
	ctx := doc.Array(KeyContext)
	ctx.AppendObject().Set(KeyVocab, SchemaOrg)
	ctx.Append(HydraCore)
}

// terms returns the object holding local term definitions of doc, creating
// a context on nodes that have none.
func terms(doc *document.Node) *document.Node {
	ctx, ok := doc.Get(KeyContext)
	if !ok {
		return doc.Object(KeyContext)
	}
	if ctx.Kind() == document.KindArray {
		for _, item := range ctx.Items() {
			if item.Kind() == document.KindObject {
				return item
			}
		}
		return ctx.AppendObject()
	}
	return ctx
}

// markIRI declares that the values of key are IRIs.
func markIRI(doc *document.Node, key string) {
	terms(doc).Object(key).Set(KeyType, KeyID)
}

// reduceContext strips the root vocabulary from an embedded node, keeping
// only its local term definitions.
func reduceContext(doc *document.Node) {
	if !doc.Has(KeyContext) {
		return
	}
	t := terms(doc)
	t.Delete(KeyVocab)
	if t.Len() == 0 {
		doc.Delete(KeyContext)
		return
	}
	doc.Set(KeyContext, t)
}
