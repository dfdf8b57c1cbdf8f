package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/artpar/hyperapi/core/document"
)

// YAMLFormatter formats output as YAML. Compact output uses flow style.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// Format writes doc as YAML, keeping key order.
func (f *YAMLFormatter) Format(w io.Writer, doc *document.Node, opts FormatOptions) error {
	v, err := project(doc, opts.Columns).MarshalYAML()
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if n, ok := v.(*yaml.Node); ok && opts.Compact {
		n.Style = yaml.FlowStyle
	}
	return f.encode(w, v)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, document.NewObject().Set("error", err.Error()))
}

// encode writes YAML to the writer.
func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewYAMLFormatter()); err != nil {
		fmt.Printf("failed to register yaml formatter: %v\n", err)
	}
}
