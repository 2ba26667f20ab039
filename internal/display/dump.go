package display

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-mudbuild/internal/props"
)

// DumpTable is one table as printed by Dump.
type DumpTable struct {
	Key   props.TableKey
	Props []props.Record
}

const dumpTemplate = `{{- range $i, $t := .Tables }}
{{- if $i }}{{ "\n" }}{{ end -}}
== {{ scope $t.Key | upper }} ==
{{ range $t.Props -}}
[{{ .ID }}] {{ .Key }} ({{ kind .Val }})
{{ range fields .Val }}{{ indentwrap . }}
{{ end -}}
{{ else }}    (no properties)
{{ end -}}
{{ end -}}`

// Dump prints tables as plain text, wrapping long values to width.
func Dump(w io.Writer, tables []DumpTable, width int) error {
	funcs := sprig.TxtFuncMap()
	funcs["scope"] = func(k props.TableKey) string {
		if k.Scope == props.ScopeLocation {
			return "location " + k.Location
		}
		return k.Scope.String() + " defaults"
	}
	funcs["kind"] = func(v props.Value) string {
		k, ok := props.KindOf(v)
		if !ok {
			return "unrecognized"
		}
		return string(k)
	}
	funcs["fields"] = func(v props.Value) []string {
		contents := props.FieldValues(v)
		kind, ok := props.KindOf(v)
		if !ok {
			kind = ""
		}
		var out []string
		for _, f := range props.Fields(kind) {
			c := contents[f.Key]
			if c == "" {
				continue
			}
			if f.Label != "" {
				c = f.Label + ": " + c
			}
			out = append(out, c)
		}
		return out
	}
	funcs["indentwrap"] = func(s string) string {
		return Block(s, width, 4)
	}

	tmpl, err := template.New("dump").Funcs(funcs).Parse(dumpTemplate)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{"Tables": tables})
	if err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	_, err = w.Write(buf.Bytes())
	return err
}
