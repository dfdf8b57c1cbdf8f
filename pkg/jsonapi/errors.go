package jsonapi

import (
	"sort"
	"strconv"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// Error is a JSON:API error object.
type Error struct {
	ID     string
	Status int
	Code   string
	Title  string
	Detail string

	// Pointer is a JSON pointer to the offending request member.
	Pointer string
}

// ErrorBuilder provides a fluent API for building Error objects.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new ErrorBuilder with the given status, code, and title.
func NewError(status int, code, title string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Status: status, Code: code, Title: title}}
}

// Detail sets the error detail message.
func (b *ErrorBuilder) Detail(detail string) *ErrorBuilder {
	b.err.Detail = detail
	return b
}

// ID sets the error ID.
func (b *ErrorBuilder) ID(id string) *ErrorBuilder {
	b.err.ID = id
	return b
}

// Pointer sets the JSON pointer to the source of the error.
// Example: "/data/attributes/email"
func (b *ErrorBuilder) Pointer(pointer string) *ErrorBuilder {
	b.err.Pointer = pointer
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() Error {
	return b.err
}

// AttributePointer points at a member of the submitted attributes.
func AttributePointer(key string) string {
	return "/data/attributes/" + key
}

// write appends e to the errors array of doc.
func (e Error) write(doc *document.Node) {
	n := doc.Array(KeyErrors).AppendObject()
	if e.ID != "" {
		n.Set(KeyID, e.ID)
	}
	n.Set("status", strconv.Itoa(e.Status))
	if e.Code != "" {
		n.Set("code", e.Code)
	}
	n.Set("title", e.Title)
	if e.Detail != "" {
		n.Set("detail", e.Detail)
	}
	if e.Pointer != "" {
		n.Object("source").Set("pointer", e.Pointer)
	}
}

// ErrorMapper writes error documents: one error object for the problem and
// one per invalid field.
type ErrorMapper struct{}

var _ mapper.ErrorMapper = ErrorMapper{}

func (ErrorMapper) OnStart(doc *document.Node) {
	top(doc)
}

func (ErrorMapper) MapProblem(doc *document.Node, p mapper.Problem) {
	NewError(p.Status, p.Type, p.Title).
		ID(p.Instance).
		Detail(p.Description).
		Build().
		write(doc)

	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		NewError(p.Status, "invalid_field", "Invalid Attribute").
			ID(p.Instance).
			Detail(p.Fields[k]).
			Pointer(AttributePointer(k)).
			Build().
			write(doc)
	}
}

func (ErrorMapper) OnFinish(doc *document.Node) {
	doc.Array(KeyErrors)
}
