package openapi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/swaggo/swag"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
)

type post struct {
	ID       string
	Headline string
	Words    float64
}

type postInput struct {
	Headline string
}

func noop(context.Context, action.Request) (any, error) { return nil, nil }

func testGenerator(t *testing.T) *Generator {
	t.Helper()

	rep := representor.New[post, string]("Post").
		Identifier(func(p post) string { return p.ID }).
		Types("BlogPosting").
		String("headline", func(p post) *string { return &p.Headline }).
		Number("wordCount", func(p post) *float64 { return &p.Words }).
		MustBuild()

	reg, err := registry.NewBuilder().Add(rep).Build()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	f := form.New("c/blog-postings", func() postInput { return postInput{} }).
		RequiredString("headline", func(p *postInput, v string) { p.Headline = v }).
		MustBuild()

	r := action.NewRouter()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(r.Handle("GET", "blog-postings", noop, action.WithReturns(action.ReturnsPage, "Post")))
	must(r.Handle("POST", "blog-postings", noop, action.WithForm(f), action.WithReturns(action.ReturnsSingle, "Post"),
		action.WithPermission(action.Authenticated())))
	must(r.Handle("GET", "blog-postings/*", noop, action.WithReturns(action.ReturnsSingle, "Post")))
	must(r.Handle("DELETE", "blog-postings/*", noop))
	r.Freeze()

	return NewGenerator(r, reg, "application/ld+json", "application/hal+json")
}

func TestGenerator_Paths(t *testing.T) {
	spec := testGenerator(t).Generate()

	if spec.OpenAPI != "3.0.3" {
		t.Errorf("OpenAPI = %q", spec.OpenAPI)
	}

	coll, ok := spec.Paths["/p/blog-postings"]
	if !ok {
		t.Fatalf("missing collection path, have %v", keys(spec.Paths))
	}
	if coll.Get == nil || coll.Post == nil || coll.Delete != nil {
		t.Fatalf("collection operations = %+v", coll)
	}
	if len(coll.Get.Parameters) != 2 {
		t.Errorf("page parameters = %v", coll.Get.Parameters)
	}
	if coll.Post.RequestBody == nil {
		t.Fatal("create has no request body")
	}
	if got := coll.Post.RequestBody.Content["application/json"].Schema.Ref; got != "#/components/schemas/form-c-blog-postings" {
		t.Errorf("request body ref = %q", got)
	}
	if len(coll.Post.Security) != 1 {
		t.Errorf("create security = %v", coll.Post.Security)
	}
	if coll.Get.Security != nil {
		t.Errorf("list security = %v", coll.Get.Security)
	}

	item, ok := spec.Paths["/p/blog-postings/{id}"]
	if !ok {
		t.Fatalf("missing item path, have %v", keys(spec.Paths))
	}
	if len(item.Parameters) != 1 || item.Parameters[0].Name != "id" {
		t.Errorf("item parameters = %v", item.Parameters)
	}
	if _, ok := item.Delete.Responses["204"]; !ok {
		t.Errorf("delete responses = %v", item.Delete.Responses)
	}
	if item.Get.OperationID != "get-blog-postings-item" {
		t.Errorf("OperationID = %q", item.Get.OperationID)
	}
	if _, ok := item.Get.Responses["200"].Content["application/hal+json"]; !ok {
		t.Errorf("200 content = %v", item.Get.Responses["200"].Content)
	}
}

func TestGenerator_Components(t *testing.T) {
	spec := testGenerator(t).Generate()

	res := spec.Components.Schemas["blog-postings"]
	if res == nil {
		t.Fatalf("missing resource schema, have %v", spec.Components.Schemas)
	}
	if res.Properties["wordCount"].Type != "number" {
		t.Errorf("wordCount = %+v", res.Properties["wordCount"])
	}

	f := spec.Components.Schemas["form-c-blog-postings"]
	if f == nil || len(f.Required) != 1 || f.Required[0] != "headline" {
		t.Errorf("form schema = %+v", f)
	}
	if _, ok := spec.Components.SecuritySchemes[basicAuth]; !ok {
		t.Error("missing basic auth scheme")
	}
}

func TestService(t *testing.T) {
	svc := NewService(testGenerator(t), zerolog.Nop())

	doc, err := svc.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("spec is not json: %v", err)
	}
	if parsed["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", parsed["openapi"])
	}

	again, _ := svc.JSON()
	if &again[0] != &doc[0] {
		t.Error("spec should be cached")
	}

	svc.Register()
	svc.Register()
	got, err := swag.ReadDoc(InstanceName)
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	if !strings.Contains(got, "/p/blog-postings/{id}") {
		t.Error("registered doc is missing item path")
	}
}

func keys(m map[string]PathItem) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
