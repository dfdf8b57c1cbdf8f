package hydra

import (
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// PageMapper writes pages as hydra:Collection documents.
type PageMapper struct {
	SingleModelMapper
}

var _ mapper.PageMapper = PageMapper{}

func (PageMapper) OnStart(doc *document.Node, links mapper.PageLinks) {
	startContext(doc)
	doc.Set(KeyID, links.Collection)
	doc.Set(KeyType, TypeCollection)
}

func (PageMapper) MapTotalCount(doc *document.Node, n int) {
	doc.Set(TermTotalItems, n)
}

func (PageMapper) MapItemCount(doc *document.Node, n int) {
	doc.Set(TermNumberOfItems, n)
}

func (PageMapper) MapPageLinks(doc *document.Node, links mapper.PageLinks) {
	view := doc.Object(TermView)
	view.Set(KeyID, links.Current)
	view.Set(KeyType, TypePartialView)
	view.Set(TermFirst, links.First)
	view.Set(TermLast, links.Last)
	if links.Next != "" {
		view.Set(TermNext, links.Next)
	}
	if links.Previous != "" {
		view.Set(TermPrevious, links.Previous)
	}
}

func (PageMapper) OnStartItem(doc *document.Node) *document.Node {
	return doc.Array(TermMember).AppendObject()
}

func (PageMapper) OnFinishItem(_, item *document.Node) {
	reduceContext(item)
}

func (PageMapper) ItemMapper() mapper.SingleModelMapper {
	return SingleModelMapper{}
}

func (PageMapper) OnFinish(doc *document.Node) {
	// members are always present, even on an empty page
	doc.Array(TermMember)
}
