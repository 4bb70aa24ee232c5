package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// render writes value as JSON or YAML, or calls text for the text format.
func (a *app) render(w io.Writer, value any, text func(w io.Writer) error) error {
	switch a.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// fields prints aligned "label value" rows.
type fields struct {
	w *tabwriter.Writer
}

func newFields(w io.Writer) *fields {
	return &fields{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (f *fields) add(label string, format string, args ...any) {
	fmt.Fprintf(f.w, "%s:\t%s\n", label, fmt.Sprintf(format, args...))
}

func (f *fields) flush() error {
	return f.w.Flush()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
