package narrative

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for hint templates.
var templateFuncs = sprig.TxtFuncMap()

// ExpandHint expands a narrative hint template against the firing node's
// name, properties and state. Authors write hints like
// "{{ .Name }} hears a rumor about {{ .State.rumor_topic }}".
func ExpandHint(tmplStr string, data any) (string, error) {
	// Quick check: if no template markers, return as-is
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing hint template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing hint template: %w", err)
	}

	return buf.String(), nil
}

// HintData is the template context for hint expansion.
type HintData struct {
	Name  string
	Props map[string]any
	State map[string]any
	Round int
}
