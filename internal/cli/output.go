package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// printResult writes v in the selected output format; table draws the
// human-readable form.
func printResult(w io.Writer, v interface{}, table func(w io.Writer)) error {
	switch outputFormat {
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("formatting output as JSON: %w", err)
		}
		return nil
	case "yaml":
		// Go through JSON so field names match the JSON output
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("formatting output as YAML: %w", err)
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("formatting output as YAML: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("formatting output as YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", outputFormat)
	}
}

func shortTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
