package openapi

import (
	"net/http"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
	"github.com/artpar/hyperapi/core/writer"
)

const basicAuth = "basicAuth"

// Generator builds OpenAPI specs from a router and a schema registry.
type Generator struct {
	router     *action.Router
	registry   *registry.Registry
	info       Info
	servers    []Server
	mediaTypes []string
	lang       language.Tag
}

// NewGenerator creates a new OpenAPI generator. mediaTypes lists the
// response formats the transport can negotiate.
func NewGenerator(router *action.Router, reg *registry.Registry, mediaTypes ...string) *Generator {
	if len(mediaTypes) == 0 {
		mediaTypes = []string{"application/json"}
	}
	return &Generator{
		router:   router,
		registry: reg,
		info: Info{
			Title:       "Hypermedia API",
			Version:     "1.0.0",
			Description: "Generated from the registered resources and operations",
		},
		mediaTypes: mediaTypes,
		lang:       language.English,
	}
}

// SetInfo sets the API info.
func (g *Generator) SetInfo(info Info) {
	g.info = info
}

// AddServer adds a server URL.
func (g *Generator) AddServer(url, description string) {
	g.servers = append(g.servers, Server{URL: url, Description: description})
}

// Generate creates the OpenAPI specification.
func (g *Generator) Generate() *Spec {
	spec := &Spec{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Servers: g.servers,
		Paths:   make(map[string]PathItem),
		Components: Components{
			Schemas: make(map[string]*jsonschema.Schema),
			SecuritySchemes: map[string]SecurityScheme{
				basicAuth: {
					Type:        "http",
					Scheme:      "basic",
					Description: "HTTP basic authentication",
				},
			},
		},
	}

	for _, e := range g.registry.Entries() {
		spec.Tags = append(spec.Tags, Tag{Name: e.Name, Description: strings.Join(e.Representor.Types(), ", ")})
		spec.Components.Schemas[e.Name] = resourceSchema(e.Representor)
	}

	for _, a := range g.router.Actions() {
		g.addAction(spec, a)
	}

	return spec
}

func (g *Generator) addAction(spec *Spec, a *action.Action) {
	path, params := openAPIPath(a.Key)
	item := spec.Paths[path]
	item.Parameters = params

	label := affordance.Label(a.Key.Method)
	op := &Operation{
		Tags:        []string{a.Key.Resource},
		Summary:     label + " " + a.Key.Path(),
		Description: a.Description,
		OperationID: operationID(a.Key),
		Responses:   g.responses(a),
	}

	if a.Permission != nil {
		op.Security = []SecurityRequirement{{basicAuth: {}}}
	}

	if a.Form != nil {
		s := form.JSONSchema(a.Form, g.lang)
		name := formSchemaName(a.Form.ID())
		spec.Components.Schemas[name] = s
		op.RequestBody = &RequestBody{
			Description: s.Description,
			Required:    true,
			Content: map[string]MediaType{
				"application/json": {Schema: ref(name)},
			},
		}
		op.Responses["400"] = Response{Description: "Form validation failed"}
	}

	if a.Returns == action.ReturnsPage {
		op.Parameters = pageParameters()
	}

	switch a.Key.Method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodDelete:
		item.Delete = op
	}
	spec.Paths[path] = item
}

func (g *Generator) responses(a *action.Action) map[string]Response {
	out := map[string]Response{
		"404": {Description: "Resource not found"},
		"405": {Description: "Method not allowed"},
	}

	switch a.Returns {
	case action.ReturnsNothing:
		out["204"] = Response{Description: "No content"}
		return out
	case action.ReturnsPage:
		out["200"] = Response{Description: "A page of resources", Content: g.content(pageSchema(g.schemaFor(a)))}
	default:
		out["200"] = Response{Description: "A single resource", Content: g.content(g.schemaFor(a))}
	}
	return out
}

func (g *Generator) schemaFor(a *action.Action) *jsonschema.Schema {
	if name, ok := g.registry.Name(a.IdentifierType); ok {
		return ref(name)
	}
	return &jsonschema.Schema{Type: "object"}
}

func (g *Generator) content(s *jsonschema.Schema) map[string]MediaType {
	out := make(map[string]MediaType, len(g.mediaTypes))
	for _, mt := range g.mediaTypes {
		out[mt] = MediaType{Schema: s}
	}
	return out
}

// openAPIPath renders a key as a templated path under the resource prefix.
func openAPIPath(k action.Key) (string, []Parameter) {
	segs := k.Segments()
	var params []Parameter
	for i, s := range segs {
		if s == action.AnyRoute {
			segs[i] = "{id}"
			params = append(params, Parameter{
				Name:     "id",
				In:       "path",
				Required: true,
				Schema:   &jsonschema.Schema{Type: "string"},
			})
		}
	}
	return writer.ResourcePrefix + strings.Join(segs, "/"), params
}

func operationID(k action.Key) string {
	segs := k.Segments()
	for i, s := range segs {
		if s == action.AnyRoute {
			segs[i] = "item"
		}
	}
	return strings.ToLower(k.Method) + "-" + strings.Join(segs, "-")
}

func formSchemaName(id string) string {
	return "form-" + strings.ReplaceAll(id, "/", "-")
}

func ref(name string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/components/schemas/" + name}
}

func pageParameters() []Parameter {
	return []Parameter{
		{Name: "page", In: "query", Description: "1-based page number", Schema: &jsonschema.Schema{Type: "integer"}},
		{Name: "per_page", In: "query", Description: "Items per page", Schema: &jsonschema.Schema{Type: "integer"}},
	}
}

func pageSchema(item *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"totalItems": {Type: "integer"},
			"items":      {Type: "array", Items: item},
		},
	}
}

// resourceSchema describes the scalar fields of a resource.
func resourceSchema(r *representor.Representor) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Title:      r.PrimaryType(),
		Properties: make(map[string]*jsonschema.Schema),
	}
	for _, f := range r.AllFields() {
		s.Properties[f.Key] = groupSchema(f.Group)
		s.PropertyOrder = append(s.PropertyOrder, f.Key)
	}
	for _, key := range relationKeys(r) {
		s.Properties[key] = &jsonschema.Schema{Type: "string", Format: "uri"}
		s.PropertyOrder = append(s.PropertyOrder, key)
	}
	for _, n := range append(r.NestedFields(), r.NestedListFields()...) {
		s.Properties[n.Key] = &jsonschema.Schema{Type: "object"}
		s.PropertyOrder = append(s.PropertyOrder, n.Key)
	}
	return s
}

func relationKeys(r *representor.Representor) []string {
	var keys []string
	for _, l := range r.Links() {
		keys = append(keys, l.Key)
	}
	for _, rm := range r.RelatedModels() {
		keys = append(keys, rm.Key)
	}
	for _, rc := range r.RelatedCollections() {
		keys = append(keys, rc.Key)
	}
	return keys
}

func groupSchema(g representor.FieldGroup) *jsonschema.Schema {
	switch g {
	case representor.GroupBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case representor.GroupBooleanList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "boolean"}}
	case representor.GroupStringList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	case representor.GroupNumber:
		return &jsonschema.Schema{Type: "number"}
	case representor.GroupNumberList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "number"}}
	case representor.GroupDate:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case representor.GroupBinaryFile, representor.GroupRelativeURL:
		return &jsonschema.Schema{Type: "string", Format: "uri"}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
