// Package output renders command results as JSON, YAML or a plain
// table for terminals.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Formatter renders structured command output.
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// ForName returns the formatter for an --output value, defaulting to
// JSON for unknown names.
func ForName(name string) Formatter {
	switch name {
	case "yaml":
		return &YAMLFormatter{}
	case "table":
		return &TableFormatter{}
	case "json":
		return &JSONFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders compact or indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// YAMLFormatter renders YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, _ bool) ([]byte, error) {
	return yaml.Marshal(data)
}

// TableFormatter renders a flat key/value listing for terminals.
// Nested maps are indented; numbers are grouped for readability.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any, _ bool) ([]byte, error) {
	var buf bytes.Buffer
	printer := message.NewPrinter(language.English)
	if err := writeTable(&buf, printer, data, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(buf *bytes.Buffer, printer *message.Printer, data any, depth int) error {
	indent := strings.Repeat("  ", depth)

	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch child := v[k].(type) {
			case map[string]any, []any:
				fmt.Fprintf(buf, "%s%s:\n", indent, k)
				if err := writeTable(buf, printer, child, depth+1); err != nil {
					return err
				}
			default:
				fmt.Fprintf(buf, "%s%s: %s\n", indent, k, formatScalar(printer, child))
			}
		}
	case []any:
		for _, item := range v {
			switch child := item.(type) {
			case map[string]any, []any:
				fmt.Fprintf(buf, "%s-\n", indent)
				if err := writeTable(buf, printer, child, depth+1); err != nil {
					return err
				}
			default:
				fmt.Fprintf(buf, "%s- %s\n", indent, formatScalar(printer, child))
			}
		}
	default:
		// Structs and typed values take the JSON round trip so the
		// table sees plain maps with their wire names.
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		switch generic.(type) {
		case map[string]any, []any:
			return writeTable(buf, printer, generic, depth)
		default:
			fmt.Fprintf(buf, "%s%s\n", indent, formatScalar(printer, generic))
		}
	}
	return nil
}

func formatScalar(printer *message.Printer, v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return printer.Sprintf("%d", int64(n))
		}
		return printer.Sprintf("%.3f", n)
	case int:
		return printer.Sprintf("%d", n)
	case int64:
		return printer.Sprintf("%d", n)
	case nil:
		return "-"
	default:
		return fmt.Sprintf("%v", v)
	}
}
