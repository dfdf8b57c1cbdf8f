package blog

import (
	"context"
	"errors"
	"net/http"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/pagination"
)

// AdminRole may delete postings and register people.
const AdminRole = "admin"

// Register adds the blog operations to r.
func Register(r *action.Router, s *Store) error {
	h := &handlers{store: s}

	postings := PostingsResource
	item := postings + "/" + action.AnyRoute
	people := PeopleResource
	person := people + "/" + action.AnyRoute

	return errors.Join(
		r.Handle(http.MethodGet, postings, h.listPostings,
			action.WithReturns(action.ReturnsPage, PostingType),
			action.WithDescription("List blog postings, newest first")),
		r.Handle(http.MethodPost, postings, h.createPosting,
			action.WithForm(CreatePostingForm),
			action.WithPermission(action.Authenticated()),
			action.WithReturns(action.ReturnsSingle, PostingType),
			action.WithDescription("Publish a blog posting")),
		r.Handle(http.MethodGet, item, h.getPosting,
			action.WithReturns(action.ReturnsSingle, PostingType)),
		r.Handle(http.MethodPut, item, h.replacePosting,
			action.WithForm(ReplacePostingForm),
			action.WithPermission(action.Authenticated()),
			action.WithReturns(action.ReturnsSingle, PostingType),
			action.WithDescription("Replace the editable fields of a posting")),
		r.Handle(http.MethodDelete, item, h.deletePosting,
			action.WithPermission(action.RequireRole(AdminRole)),
			action.WithDescription("Delete a posting and its comments")),

		r.Handle(http.MethodGet, item+"/"+CommentsResource, h.listComments,
			action.WithReturns(action.ReturnsPage, CommentType),
			action.WithDescription("List the comments of a posting")),
		r.Handle(http.MethodPost, item+"/"+CommentsResource, h.createComment,
			action.WithForm(CreateCommentForm),
			action.WithReturns(action.ReturnsSingle, CommentType),
			action.WithDescription("Comment on a posting")),
		r.Handle(http.MethodGet, CommentsResource+"/"+action.AnyRoute, h.getComment,
			action.WithReturns(action.ReturnsSingle, CommentType)),

		r.Handle(http.MethodGet, people, h.listPeople,
			action.WithReturns(action.ReturnsPage, PersonType)),
		r.Handle(http.MethodPost, people, h.createPerson,
			action.WithForm(CreatePersonForm),
			action.WithPermission(action.RequireRole(AdminRole)),
			action.WithReturns(action.ReturnsSingle, PersonType),
			action.WithDescription("Register an author")),
		r.Handle(http.MethodGet, person, h.getPerson,
			action.WithReturns(action.ReturnsSingle, PersonType)),
		r.Handle(http.MethodGet, person+"/"+postings, h.listAuthorPostings,
			action.WithReturns(action.ReturnsPage, PostingType),
			action.WithDescription("List the postings of an author")),
	)
}

type handlers struct {
	store *Store
}

func (h *handlers) listPostings(ctx context.Context, req action.Request) (any, error) {
	items, total, err := h.store.ListPostings(ctx, req.Page)
	if err != nil {
		return nil, err
	}
	return pagination.New(items, total, req.Page).Erase(), nil
}

func (h *handlers) createPosting(ctx context.Context, req action.Request) (any, error) {
	return h.store.CreatePosting(ctx, req.Body.(PostingInput))
}

func (h *handlers) getPosting(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	return h.store.GetPosting(ctx, id)
}

func (h *handlers) replacePosting(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	return h.store.ReplacePosting(ctx, id, req.Body.(PostingInput))
}

func (h *handlers) deletePosting(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	return nil, h.store.DeletePosting(ctx, id)
}

func (h *handlers) listComments(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	items, total, err := h.store.ListComments(ctx, id, req.Page)
	if err != nil {
		return nil, err
	}
	return pagination.New(items, total, req.Page).Erase(), nil
}

func (h *handlers) createComment(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	return h.store.CreateComment(ctx, id, req.Body.(CommentInput))
}

func (h *handlers) getComment(ctx context.Context, req action.Request) (any, error) {
	id, err := int64ID(req.ID())
	if err != nil {
		return nil, err
	}
	return h.store.GetComment(ctx, id)
}

func (h *handlers) listPeople(ctx context.Context, req action.Request) (any, error) {
	items, total, err := h.store.ListPeople(ctx, req.Page)
	if err != nil {
		return nil, err
	}
	return pagination.New(items, total, req.Page).Erase(), nil
}

func (h *handlers) createPerson(ctx context.Context, req action.Request) (any, error) {
	return h.store.CreatePerson(ctx, req.Body.(PersonInput))
}

func (h *handlers) getPerson(ctx context.Context, req action.Request) (any, error) {
	id, err := uuidID(req.ID())
	if err != nil {
		return nil, err
	}
	return h.store.GetPerson(ctx, id)
}

func (h *handlers) listAuthorPostings(ctx context.Context, req action.Request) (any, error) {
	id, err := uuidID(req.ID())
	if err != nil {
		return nil, err
	}
	if _, err := h.store.GetPerson(ctx, id); err != nil {
		return nil, err
	}
	items, total, err := h.store.ListPostingsByAuthor(ctx, id, req.Page)
	if err != nil {
		return nil, err
	}
	return pagination.New(items, total, req.Page).Erase(), nil
}
