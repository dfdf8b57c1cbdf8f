package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/pagination"
	"github.com/artpar/hyperapi/core/writer"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// handleResource dispatches /p/{segments...} to the registered action.
func (c *Channel) handleResource(w http.ResponseWriter, r *http.Request) {
	format, ok := c.negotiate(w, r)
	if !ok {
		return
	}

	segments := writer.Segments(chi.URLParam(r, "*"))
	a, err := c.actions.Resolve(r.Method, segments...)
	if err != nil {
		c.writeRoutingError(w, r, format, err)
		return
	}

	resource := a.Key.Resource
	if a.Key.Nested != "" {
		resource = a.Key.Nested
	}
	setOperation(r, convention.OperationName(resource, affordance.Label(a.Key.Method)))

	ctx := r.Context()
	creds := action.CredentialsFrom(ctx)
	if !a.Permission.Allowed(ctx, creds) {
		if !creds.Authenticated() {
			c.writeError(w, r, format, http.StatusUnauthorized, "Unauthorized", "authentication required", nil)
			return
		}
		c.writeError(w, r, format, http.StatusForbidden, "Forbidden", "operation not permitted", nil)
		return
	}

	var body any
	if a.Form != nil {
		raw, err := decodeBody(r)
		if err != nil {
			c.writeError(w, r, format, http.StatusBadRequest, "Bad Request", err.Error(), nil)
			return
		}
		body, err = a.Decode(raw)
		if err != nil {
			c.writeHandlerError(w, r, format, err)
			return
		}
	}

	key, err := action.NewKey(r.Method, segments...)
	if err != nil {
		c.writeError(w, r, format, http.StatusNotFound, "Not Found", err.Error(), nil)
		return
	}

	settings := c.currentSettings()
	wreq := c.writeRequest(r)
	req := action.Request{
		Key:         key,
		Body:        body,
		Credentials: creds,
		Page:        pagination.ParseParams(r.URL.Query(), settings.DefaultPageSize, settings.MaxPageSize),
		Language:    wreq.Language,
	}

	result, err := a.Handler(ctx, req)
	if err != nil {
		c.writeHandlerError(w, r, format, err)
		return
	}

	switch a.Returns {
	case action.ReturnsNothing:
		w.WriteHeader(http.StatusNoContent)

	case action.ReturnsPage:
		page, ok := result.(pagination.Page[any])
		if !ok {
			c.writeInternal(w, r, format, fmt.Errorf("%s: handler returned %T, want pagination.Page[any]", a.Key, result))
			return
		}
		doc, err := c.writer.WritePage(ctx, wreq, format.Page(), page, a.IdentifierType, segments...)
		if err != nil {
			c.writeInternal(w, r, format, err)
			return
		}
		c.writeNode(w, r, format, http.StatusOK, doc)

	default:
		if result == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		doc, err := c.writer.WriteDocument(ctx, wreq, format.SingleModel(), result, a.IdentifierType)
		if err != nil {
			c.writeInternal(w, r, format, err)
			return
		}
		status := http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
			if loc, ok := c.location(wreq.ServerURL, a.IdentifierType, result); ok {
				w.Header().Set("Location", loc)
			}
		}
		c.writeNode(w, r, format, status, doc)
	}
}

// location returns the URL of a created model.
func (c *Channel) location(server, identifierType string, model any) (string, bool) {
	rep, ok := c.registry.Representor(identifierType)
	if !ok {
		return "", false
	}
	id, ok := rep.Identifier(model)
	if !ok {
		return "", false
	}
	path, ok := c.registry.Path(identifierType, id)
	if !ok {
		return "", false
	}
	return writer.URLs{Server: server}.Resource(path), true
}

// handleForm describes the form with the id following /f/.
func (c *Channel) handleForm(w http.ResponseWriter, r *http.Request) {
	format, ok := c.negotiate(w, r)
	if !ok {
		return
	}

	id := strings.Trim(chi.URLParam(r, "*"), "/")
	f, ok := c.lookupForm(id)
	if !ok {
		c.writeError(w, r, format, http.StatusNotFound, "Not Found", fmt.Sprintf("form %q not found", id), nil)
		return
	}

	doc := c.writer.WriteForm(c.writeRequest(r), format.Form(), f)
	c.writeNode(w, r, format, http.StatusOK, doc)
}

func (c *Channel) lookupForm(id string) (form.Schema, bool) {
	for _, a := range c.actions.Actions() {
		if a.Form != nil && a.Form.ID() == id {
			return a.Form, true
		}
	}
	return nil, false
}

// handleBinary streams /b/{name}/{id}/{key}.
func (c *Channel) handleBinary(w http.ResponseWriter, r *http.Request) {
	fallback, _ := c.formats.Named(c.currentSettings().DefaultFormat)
	notFound := func(detail string) {
		c.writeError(w, r, fallback, http.StatusNotFound, "Not Found", detail, nil)
	}

	segments := writer.Segments(chi.URLParam(r, "*"))
	if len(segments) != 3 || c.fetcher == nil {
		notFound("no such binary resource")
		return
	}
	name, id, key := segments[0], segments[1], segments[2]

	entry, ok := c.registry.Lookup(name)
	if !ok {
		notFound(fmt.Sprintf("resource %q not found", name))
		return
	}

	model, err := c.fetcher.Fetch(r.Context(), entry.IdentifierType, id)
	if err != nil {
		if errors.Is(err, action.ErrNotFound) {
			notFound(err.Error())
			return
		}
		c.writeInternal(w, r, fallback, err)
		return
	}

	bf, ok := entry.Representor.BinaryFile(model, key)
	if !ok || bf == nil || bf.Open == nil {
		notFound(fmt.Sprintf("%s has no binary field %q", name, key))
		return
	}

	rc, err := bf.Open()
	if err != nil {
		c.writeInternal(w, r, fallback, err)
		return
	}
	defer rc.Close()

	mediaType := bf.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	if _, err := io.Copy(w, rc); err != nil {
		c.logger.Debug().Err(err).Str("request_id", requestID(r)).Msg("binary copy interrupted")
	}
}

// handleDocumentation writes the API documentation.
func (c *Channel) handleDocumentation(w http.ResponseWriter, r *http.Request) {
	format, ok := c.negotiate(w, r)
	if !ok {
		return
	}
	doc := c.writer.WriteDocumentation(r.Context(), c.writeRequest(r), format.Documentation(), c.registry, c.actions, c.docs)
	c.writeNode(w, r, format, http.StatusOK, doc)
}

// writeRequest builds the writer configuration from the request.
func (c *Channel) writeRequest(r *http.Request) writer.Request {
	q := r.URL.Query()
	return writer.Request{
		ServerURL:     c.serverURL(r),
		Language:      c.languages.Match(r.Header.Get("Accept-Language")),
		Fields:        writer.ParseFieldSelection(q),
		Embedded:      writer.ParseEmbedded(q),
		Credentials:   action.CredentialsFrom(r.Context()),
		MaxEmbedDepth: c.currentSettings().MaxEmbedDepth,
	}
}

// negotiate selects the response format or writes 406.
func (c *Channel) negotiate(w http.ResponseWriter, r *http.Request) (mapper.Format, bool) {
	def := c.currentSettings().DefaultFormat
	format, ok := c.formats.Negotiate(r.Header.Get("Accept"), def)
	if ok {
		return format, true
	}

	fallback, _ := c.formats.Named(def)
	c.writeError(w, r, fallback, http.StatusNotAcceptable, "Not Acceptable",
		"supported media types: "+strings.Join(c.formats.MediaTypes(), ", "), nil)
	return nil, false
}

// decodeBody reads a JSON object, keeping numbers as json.Number.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}

func (c *Channel) writeRoutingError(w http.ResponseWriter, r *http.Request, format mapper.Format, err error) {
	var notAllowed *action.NotAllowedError
	if errors.As(err, &notAllowed) {
		w.Header().Set("Allow", strings.Join(notAllowed.Allowed, ", "))
		c.writeError(w, r, format, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error(), nil)
		return
	}
	c.writeError(w, r, format, http.StatusNotFound, "Not Found", err.Error(), nil)
}

// writeHandlerError maps form and handler errors to status codes.
func (c *Channel) writeHandlerError(w http.ResponseWriter, r *http.Request, format mapper.Format, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		c.writeError(w, r, format, http.StatusBadRequest, "Bad Request", err.Error(), map[string]string{verr.Key: verr.Error()})
	case errors.Is(err, action.ErrNotFound):
		c.writeError(w, r, format, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.Is(err, action.ErrForbidden):
		c.writeError(w, r, format, http.StatusForbidden, "Forbidden", err.Error(), nil)
	default:
		c.writeInternal(w, r, format, err)
	}
}

func (c *Channel) writeInternal(w http.ResponseWriter, r *http.Request, format mapper.Format, err error) {
	c.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", requestID(r)).
		Msg("request failed")
	c.writeError(w, r, format, http.StatusInternalServerError, "Internal Server Error", "internal error", nil)
}

// writeProblem writes an error in the default format.
func (c *Channel) writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string, fields map[string]string) {
	format, _ := c.formats.Named(c.currentSettings().DefaultFormat)
	c.writeError(w, r, format, status, title, detail, fields)
}

func (c *Channel) writeError(w http.ResponseWriter, r *http.Request, format mapper.Format, status int, title, detail string, fields map[string]string) {
	if status == http.StatusUnauthorized {
		challenge(w)
	}
	doc := c.writer.WriteError(format.Error(), mapper.Problem{
		Title:       title,
		Description: detail,
		Status:      status,
		Instance:    requestID(r),
		Fields:      fields,
	})
	c.writeNode(w, r, format, status, doc)
}

// writeNode serializes doc with the format's media type.
func (c *Channel) writeNode(w http.ResponseWriter, r *http.Request, format mapper.Format, status int, doc *document.Node) {
	data, err := doc.MarshalJSON()
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID(r)).Msg("document encoding failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", format.MediaType())
	h.Add("Vary", "Accept")
	h.Add("Vary", "Accept-Language")
	h.Set("Content-Language", c.languages.Match(r.Header.Get("Accept-Language")).String())
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
