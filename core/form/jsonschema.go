package form

import (
	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/text/language"
)

// JSONSchema converts a form description into a JSON Schema object, used for
// OpenAPI request bodies.
func JSONSchema(s Schema, lang language.Tag) *jsonschema.Schema {
	d := s.Describe(lang)

	out := &jsonschema.Schema{
		Type:        "object",
		Title:       d.Title,
		Description: d.Description,
		Properties:  make(map[string]*jsonschema.Schema, len(d.Fields)),
	}

	for _, fd := range d.Fields {
		out.Properties[fd.Name] = fieldSchema(fd.Type)
		out.PropertyOrder = append(out.PropertyOrder, fd.Name)
		if fd.Required {
			out.Required = append(out.Required, fd.Name)
		}
	}

	return out
}

func fieldSchema(t FieldType) *jsonschema.Schema {
	if t.IsList() {
		return &jsonschema.Schema{Type: "array", Items: fieldSchema(t.Elem())}
	}

	switch t {
	case TypeBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case TypeDate:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case TypeDouble:
		return &jsonschema.Schema{Type: "number"}
	case TypeLong:
		return &jsonschema.Schema{Type: "integer"}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
