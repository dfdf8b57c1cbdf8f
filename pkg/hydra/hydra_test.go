package hydra

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/pagination"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
	"github.com/artpar/hyperapi/core/writer"
)

type posting struct {
	ID       int
	Headline string
	Date     time.Time
	AuthorID string
}

type person struct {
	ID   string
	Name string
}

func testWriter(t *testing.T) *writer.Writer {
	t.Helper()
	postingRep := representor.New[posting, int]("blog-posting").
		Identifier(func(p posting) int { return p.ID }).
		Types("BlogPosting").
		String("headline", func(p posting) *string { return &p.Headline }).
		Date("dateCreated", func(p posting) *time.Time { return &p.Date }).
		BidirectionalModel("author", "person", "blogPosts", func(p posting) (any, bool) {
			return p.AuthorID, p.AuthorID != ""
		}).
		MustBuild()
	personRep := representor.New[person, string]("person").
		Identifier(func(p person) string { return p.ID }).
		Types("Person").
		String("name", func(p person) *string { return &p.Name }).
		MustBuild()

	reg, err := registry.NewBuilder().Add(postingRep).Add(personRep).Build()
	if err != nil {
		t.Fatalf("registry Build() error = %v", err)
	}

	fetch := writer.FetcherFunc(func(_ context.Context, _ string, id any) (any, error) {
		return person{ID: id.(string), Name: "Ada"}, nil
	})
	return writer.New(reg, zerolog.Nop(), writer.WithFetcher(fetch))
}

func decode(t *testing.T, doc *document.Node) map[string]any {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return out
}

func TestSingleModelMapper(t *testing.T) {
	w := testWriter(t)
	p := posting{ID: 1, Headline: "Hello", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), AuthorID: "ada"}

	doc, err := w.WriteDocument(context.Background(), writer.Request{ServerURL: "http://h"}, SingleModelMapper{}, p, "blog-posting")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	got := decode(t, doc)

	if got["@id"] != "http://h/p/blog-postings/1" {
		t.Errorf("@id = %v", got["@id"])
	}
	if types := got["@type"].([]any); types[0] != "BlogPosting" {
		t.Errorf("@type = %v", types)
	}
	if got["dateCreated"] != "2020-01-01T00:00:00Z" {
		t.Errorf("dateCreated = %v", got["dateCreated"])
	}
	if got["author"] != "http://h/p/people/ada" {
		t.Errorf("author = %v", got["author"])
	}

	ctx := got["@context"].([]any)
	if ctx[1] != HydraCore {
		t.Errorf("@context[1] = %v", ctx[1])
	}
	termDefs := ctx[0].(map[string]any)
	if termDefs["@vocab"] != SchemaOrg {
		t.Errorf("@vocab = %v", termDefs["@vocab"])
	}
	if author := termDefs["author"].(map[string]any); author["@type"] != "@id" {
		t.Errorf("author term = %v", author)
	}
	if inverse := termDefs["blogPosts"].(map[string]any); inverse["@reverse"] != "author" {
		t.Errorf("blogPosts term = %v", inverse)
	}
}

func TestSingleModelMapper_EmbeddedContextReduced(t *testing.T) {
	w := testWriter(t)
	req := writer.Request{ServerURL: "http://h", Embedded: []string{"author"}}

	doc, err := w.WriteDocument(context.Background(), req, SingleModelMapper{}, posting{ID: 1, AuthorID: "ada"}, "blog-posting")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	author := decode(t, doc)["author"].(map[string]any)

	if author["@id"] != "http://h/p/people/ada" || author["name"] != "Ada" {
		t.Errorf("embedded author = %v", author)
	}
	ctx, ok := author["@context"].(map[string]any)
	if !ok {
		t.Fatalf("embedded @context = %v, want local term definitions", author["@context"])
	}
	if _, ok := ctx["@vocab"]; ok {
		t.Error("embedded context repeats the vocabulary")
	}
	if _, ok := ctx["blogPosts"]; !ok {
		t.Error("embedded context lost the inverse collection term")
	}
}

func TestPageMapper(t *testing.T) {
	w := testWriter(t)
	page := pagination.New([]posting{{ID: 1}, {ID: 2}}, 5, pagination.Params{Page: 1, PerPage: 2}).Erase()

	doc, err := w.WritePage(context.Background(), writer.Request{ServerURL: "http://h"}, PageMapper{}, page, "blog-posting", "blog-postings")
	if err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	got := decode(t, doc)

	if got["@type"] != TypeCollection || got["totalItems"] != float64(5) || got["numberOfItems"] != float64(2) {
		t.Errorf("collection = %v", got)
	}
	members := got["member"].([]any)
	if len(members) != 2 {
		t.Fatalf("len(member) = %d", len(members))
	}
	if _, ok := members[0].(map[string]any)["@context"]; ok {
		t.Error("member keeps a context")
	}

	view := got["view"].(map[string]any)
	if view["next"] != "http://h/p/blog-postings?page=2&per_page=2" {
		t.Errorf("view.next = %v", view["next"])
	}
	if _, ok := view["previous"]; ok {
		t.Error("first page should have no previous")
	}
}

func TestPageMapper_EmptyHasMembers(t *testing.T) {
	w := testWriter(t)
	page := pagination.Page[any]{ItemsPerPage: 10, PageNumber: 1}
	doc, _ := w.WritePage(context.Background(), writer.Request{ServerURL: "http://h"}, PageMapper{}, page, "blog-posting", "blog-postings")

	if members, ok := decode(t, doc)["member"].([]any); !ok || len(members) != 0 {
		t.Errorf("member = %v, want empty array", members)
	}
}

func TestFormMapper(t *testing.T) {
	type body struct{ Headline string }
	f := form.New("c/blog-postings", func() body { return body{} }).
		Title(form.Text("BlogPosting")).
		RequiredString("headline", func(b *body, v string) { b.Headline = v }).
		MustBuild()

	doc := testWriter(t).WriteForm(writer.Request{ServerURL: "http://h"}, FormMapper{}, f)
	got := decode(t, doc)

	if got["@id"] != "http://h/f/c/blog-postings" || got["@type"] != TypeClass || got["title"] != "BlogPosting" {
		t.Errorf("form = %v", got)
	}
	prop := got["supportedProperty"].([]any)[0].(map[string]any)
	if prop["property"] != "headline" || prop["required"] != true || prop["range"] != "string" {
		t.Errorf("supportedProperty = %v", prop)
	}
}

func TestErrorMapper(t *testing.T) {
	doc := testWriter(t).WriteError(ErrorMapper{}, mapper.Problem{
		Title:       "Bad Request",
		Description: "headline is required",
		Status:      400,
		Fields:      map[string]string{"headline": "missing"},
	})
	got := decode(t, doc)

	if got["@type"] != TypeError || got["statusCode"] != float64(400) || got["description"] != "headline is required" {
		t.Errorf("error = %v", got)
	}
	if fields := got["invalidFields"].(map[string]any); fields["headline"] != "missing" {
		t.Errorf("invalidFields = %v", fields)
	}
}

func TestFormat(t *testing.T) {
	var f mapper.Format = Format{}
	if f.MediaType() != "application/ld+json" {
		t.Errorf("MediaType() = %q", f.MediaType())
	}
}
