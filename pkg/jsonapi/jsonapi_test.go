package jsonapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/mapper"
	"github.com/artpar/hyperapi/core/pagination"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
	"github.com/artpar/hyperapi/core/writer"
)

type place struct {
	City string
}

type posting struct {
	ID       int
	Headline string
	AuthorID string
	Place    *place
}

type person struct {
	ID   string
	Name string
}

type body struct{ Headline string }

func testWriter(t *testing.T) *writer.Writer {
	t.Helper()
	placeRep := representor.Nested[place]().
		Types("Place").
		String("city", func(p place) *string { return &p.City }).
		MustBuild()
	postingRep := representor.New[posting, int]("blog-posting").
		Identifier(func(p posting) int { return p.ID }).
		Types("BlogPosting", "CreativeWork").
		String("headline", func(p posting) *string { return &p.Headline }).
		BidirectionalModel("author", "person", "blogPosts", func(p posting) (any, bool) {
			return p.AuthorID, p.AuthorID != ""
		}).
		Nested("locationCreated", placeRep, func(p posting) (any, bool) {
			if p.Place == nil {
				return nil, false
			}
			return *p.Place, true
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

	f := form.New("u/blog-postings", func() body { return body{} }).
		RequiredString("headline", func(b *body, v string) { b.Headline = v }).
		MustBuild()
	noop := func(context.Context, action.Request) (any, error) { return nil, nil }
	router := action.NewRouter()
	if err := router.Handle("GET", "blog-postings/*", noop); err != nil {
		t.Fatal(err)
	}
	if err := router.Handle("PUT", "blog-postings/*", noop, action.WithForm(f)); err != nil {
		t.Fatal(err)
	}
	router.Freeze()

	fetch := writer.FetcherFunc(func(_ context.Context, _ string, id any) (any, error) {
		return person{ID: id.(string), Name: "Ada"}, nil
	})
	return writer.New(reg, zerolog.Nop(),
		writer.WithFetcher(fetch),
		writer.WithAffordances(affordance.NewResolver(router, zerolog.Nop())))
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

func obj(t *testing.T, m map[string]any, path ...string) map[string]any {
	t.Helper()
	cur := m
	for _, k := range path {
		next, ok := cur[k].(map[string]any)
		if !ok {
			t.Fatalf("%v: no object at %q in %v", path, k, cur)
		}
		cur = next
	}
	return cur
}

func TestSingleModelMapper(t *testing.T) {
	w := testWriter(t)
	req := writer.Request{ServerURL: "http://h"}
	model := posting{ID: 1, Headline: "Hi", AuthorID: "ada", Place: &place{City: "London"}}

	doc, err := w.WriteDocument(context.Background(), req, NewSingleModelMapper(), model, "blog-posting")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	got := decode(t, doc)

	if v := obj(t, got, "jsonapi")["version"]; v != Version {
		t.Errorf("jsonapi.version = %v", v)
	}
	if self := obj(t, got, "links")["self"]; self != "http://h/p/blog-postings/1" {
		t.Errorf("top-level self = %v", self)
	}

	data := obj(t, got, "data")
	if data["type"] != "BlogPosting" || data["id"] != "1" {
		t.Errorf("type/id = %v/%v", data["type"], data["id"])
	}
	if h := obj(t, data, "attributes")["headline"]; h != "Hi" {
		t.Errorf("headline = %v", h)
	}
	if loc := obj(t, data, "attributes", "locationCreated"); loc["city"] != "London" || loc["type"] != "Place" {
		t.Errorf("nested object = %v", loc)
	}
	if types, _ := obj(t, data, "meta")["types"].([]any); len(types) != 2 {
		t.Errorf("meta.types = %v", types)
	}

	author := obj(t, data, "relationships", "author")
	if rel := obj(t, author, "links")["related"]; rel != "http://h/p/people/ada" {
		t.Errorf("author related = %v", rel)
	}
	if linkage := obj(t, author, "data"); linkage["id"] != "ada" || linkage["type"] != "Person" {
		t.Errorf("author linkage = %v", linkage)
	}
	if inv := obj(t, author, "meta")["inverse"]; inv != "blogPosts" {
		t.Errorf("inverse = %v", inv)
	}

	ops, _ := obj(t, data, "meta")["operations"].([]any)
	var replace map[string]any
	for _, op := range ops {
		if o := op.(map[string]any); o["method"] == "PUT" {
			replace = o
		}
	}
	if replace == nil || replace["form"] != "http://h/f/u/blog-postings" || replace["label"] != "replace" {
		t.Errorf("replace operation = %v (all %v)", replace, ops)
	}
}

func TestSingleModelMapper_Embedded(t *testing.T) {
	w := testWriter(t)
	req := writer.Request{ServerURL: "http://h", Embedded: []string{"author"}}

	doc, err := w.WriteDocument(context.Background(), req, NewSingleModelMapper(), posting{ID: 1, AuthorID: "ada"}, "blog-posting")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	got := decode(t, doc)

	author := obj(t, got, "data", "relationships", "author", "data")
	if author["type"] != "Person" || author["id"] != "ada" {
		t.Errorf("embedded type/id = %v/%v", author["type"], author["id"])
	}
	if name := obj(t, author, "attributes")["name"]; name != "Ada" {
		t.Errorf("embedded name = %v", name)
	}
	if _, ok := author["jsonapi"]; ok {
		t.Error("embedded resource must not carry a top-level member")
	}
	if rel := obj(t, author, "relationships", "blogPosts", "links")["related"]; rel != "http://h/p/people/ada/blog-postings" {
		t.Errorf("inverse collection = %v", rel)
	}
}

func TestSingleModelMapper_LinkageMatchesEmbeddedType(t *testing.T) {
	w := testWriter(t)
	model := posting{ID: 1, AuthorID: "ada"}

	typeOf := func(embedded []string) any {
		req := writer.Request{ServerURL: "http://h", Embedded: embedded}
		doc, err := w.WriteDocument(context.Background(), req, NewSingleModelMapper(), model, "blog-posting")
		if err != nil {
			t.Fatalf("WriteDocument() error = %v", err)
		}
		return obj(t, decode(t, doc), "data", "relationships", "author", "data")["type"]
	}

	linked, embedded := typeOf(nil), typeOf([]string{"author"})
	if linked != embedded {
		t.Errorf("linkage type = %v, embedded type = %v", linked, embedded)
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://h/p/people/ada", "ada"},
		{"http://h/p/people/ada%20lovelace", "ada lovelace"},
		{"http://h/p/people/a%2Fb", "a/b"},
		{"http://h/p/people/bad%zz", "bad%zz"},
	}
	for _, tt := range tests {
		if got := idFromURL(tt.url); got != tt.want {
			t.Errorf("idFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestPageMapper(t *testing.T) {
	w := testWriter(t)
	page := pagination.New([]posting{{ID: 3}}, 3, pagination.Params{Page: 3, PerPage: 1}).Erase()

	doc, err := w.WritePage(context.Background(), writer.Request{ServerURL: "http://h"}, NewPageMapper(), page, "blog-posting", "blog-postings")
	if err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	got := decode(t, doc)

	meta := obj(t, got, "meta")
	if meta["total"] != float64(3) || meta["count"] != float64(1) {
		t.Errorf("meta = %v", meta)
	}
	links := obj(t, got, "links")
	if links["prev"] != "http://h/p/blog-postings?page=2&per_page=1" {
		t.Errorf("prev = %v", links["prev"])
	}
	if _, ok := links["next"]; ok {
		t.Error("last page should have no next")
	}
	items, _ := got["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("len(data) = %d", len(items))
	}
	if item := items[0].(map[string]any); item["id"] != "3" || item["type"] != "BlogPosting" {
		t.Errorf("item = %v", item)
	}
}

func TestErrorMapper(t *testing.T) {
	doc := testWriter(t).WriteError(ErrorMapper{}, mapper.Problem{
		Title:       "Bad Request",
		Description: "headline: required",
		Status:      400,
		Instance:    "req-1",
		Fields:      map[string]string{"headline": "required"},
	})
	got := decode(t, doc)

	errs, _ := got["errors"].([]any)
	if len(errs) != 2 {
		t.Fatalf("len(errors) = %d: %v", len(errs), got)
	}
	first := errs[0].(map[string]any)
	if first["status"] != "400" || first["id"] != "req-1" || first["detail"] != "headline: required" {
		t.Errorf("problem error = %v", first)
	}
	field := errs[1].(map[string]any)
	if p := obj(t, field, "source")["pointer"]; p != "/data/attributes/headline" {
		t.Errorf("pointer = %v", p)
	}
}

func TestErrorBuilder(t *testing.T) {
	e := NewError(404, "not_found", "Not Found").Detail("no posting 9").ID("x").Build()
	if e.Status != 404 || e.Code != "not_found" || e.Detail != "no posting 9" || e.ID != "x" {
		t.Errorf("Build() = %+v", e)
	}
	if e.Pointer != "" {
		t.Errorf("Pointer = %q, want empty", e.Pointer)
	}
}

func TestFormMapper(t *testing.T) {
	f := form.New("c/blog-postings", func() body { return body{} }).
		OptionalString("headline", func(b *body, v string) { b.Headline = v }).
		MustBuild()
	got := decode(t, testWriter(t).WriteForm(writer.Request{ServerURL: "http://h"}, FormMapper{}, f))

	data := obj(t, got, "data")
	if data["type"] != "form" || data["id"] != "c/blog-postings" {
		t.Errorf("form data = %v", data)
	}
	fields := obj(t, data, "attributes")["fields"].([]any)
	if p := fields[0].(map[string]any); p["name"] != "headline" || p["required"] != false {
		t.Errorf("field = %v", p)
	}
}

func TestFormat(t *testing.T) {
	var f mapper.Format = Format{}
	if f.MediaType() != ContentType {
		t.Errorf("MediaType() = %q", f.MediaType())
	}
	if f.SingleModel() == f.SingleModel() {
		t.Error("SingleModel() should return a fresh mapper per call")
	}
}
