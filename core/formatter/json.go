package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/hyperapi/core/document"
)

// JSONFormatter formats output as JSON, keeping key order.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// Format writes doc as JSON.
func (f *JSONFormatter) Format(w io.Writer, doc *document.Node, opts FormatOptions) error {
	b, err := project(doc, opts.Columns).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if !opts.Compact {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return fmt.Errorf("indent json: %w", err)
		}
		b = buf.Bytes()
	}

	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	doc := document.NewObject().Set("error", err.Error())
	return f.Format(w, doc, FormatOptions{})
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
