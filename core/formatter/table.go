package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/artpar/hyperapi/core/document"
)

// TableFormatter formats output as aligned text tables. Arrays of objects
// become one row per element; objects become key/value lines.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// Format writes doc as a table.
func (f *TableFormatter) Format(w io.Writer, doc *document.Node, opts FormatOptions) error {
	switch doc.Kind() {
	case document.KindArray:
		return f.formatList(w, doc.Items(), opts)
	case document.KindObject:
		return f.formatRecord(w, doc, opts)
	default:
		_, err := fmt.Fprintln(w, f.formatValue(doc.Value(), opts.MaxWidth))
		return err
	}
}

func (f *TableFormatter) formatList(w io.Writer, rows []*document.Node, opts FormatOptions) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Determine columns
	columns := f.resolveColumns(rows, opts.Columns)

	// Print header
	if !opts.NoHeader {
		var headers []string
		for _, col := range columns {
			headers = append(headers, strings.ToUpper(col))
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	// Print rows
	for _, row := range rows {
		var values []string
		for _, col := range columns {
			values = append(values, f.cell(row, col, opts.MaxWidth))
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	return tw.Flush()
}

func (f *TableFormatter) formatRecord(w io.Writer, record *document.Node, opts FormatOptions) error {
	if record.Len() == 0 {
		fmt.Fprintln(w, "Record not found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	columns := opts.Columns
	if len(columns) == 0 {
		columns = record.Keys()
	}

	for _, col := range columns {
		fmt.Fprintf(tw, "%s:\t%s\n", f.formatLabel(col), f.cell(record, col, 0))
	}

	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// resolveColumns returns the requested columns, or the union of row keys in
// order of first appearance.
func (f *TableFormatter) resolveColumns(rows []*document.Node, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}

	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		if row.Kind() != document.KindObject {
			continue
		}
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

func (f *TableFormatter) cell(row *document.Node, col string, maxWidth int) string {
	v, ok := row.Get(col)
	if !ok {
		return "-"
	}
	if v.Kind() != document.KindScalar {
		b, _ := json.Marshal(v)
		return f.truncate(string(b), maxWidth)
	}
	return f.formatValue(v.Value(), maxWidth)
}

// formatLabel formats a key as a label: "displayDate" and "display_date"
// both become "Display Date".
func (f *TableFormatter) formatLabel(name string) string {
	var words []string
	var cur []rune
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			if len(cur) > 0 {
				words = append(words, string(cur))
			}
			cur = nil
		case unicode.IsUpper(r) && len(cur) > 0:
			words = append(words, string(cur))
			cur = []rune{r}
		default:
			cur = append(cur, r)
		}
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}

	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case []byte:
		str = "[binary]"
	case float64:
		// Check if it's a whole number
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%.2f", v)
		}
	case []string:
		str = strings.Join(v, ", ")
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	return f.truncate(str, maxWidth)
}

func (f *TableFormatter) truncate(str string, maxWidth int) string {
	if maxWidth > 3 && len(str) > maxWidth {
		return str[:maxWidth-3] + "..."
	}
	return str
}

func init() {
	if err := Register(NewTableFormatter()); err != nil {
		fmt.Printf("failed to register table formatter: %v\n", err)
	}
}
