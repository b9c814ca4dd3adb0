package persona

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// DefaultID is the persona used when an unknown identifier is requested.
const DefaultID = "assistant"

// TemplateData exposed to persona prompt templates.
type TemplateData struct {
	OS    string
	Arch  string
	Shell string
	Term  string
}

var idToRawPrompt = map[string]string{
	"assistant": assistantPrompt,
	"developer": developerPrompt,
	"writer":    writerPrompt,
	"sql":       sqlPrompt,
	"sarcastic": sarcasticPrompt,
}

var idToPrompt = map[string]string{}

func init() {
	for id, raw := range idToRawPrompt {
		prompt, err := renderPrompt(raw)
		if err != nil {
			panic(fmt.Sprintf("rendering persona prompt (%s): %v", id, err))
		}
		idToPrompt[id] = prompt
	}
}

// renderPrompt runs a prompt through the template engine, so a prompt can
// reference the environment or any sprig function.
func renderPrompt(raw string) (string, error) {
	tmpl, err := template.New("persona_prompt").Funcs(sprig.FuncMap()).Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "parsing prompt template")
	}
	data := TemplateData{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: os.Getenv("SHELL"),
		Term:  os.Getenv("TERM"),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "executing prompt template")
	}
	return buf.String(), nil
}

// SystemPrompt returns the system instruction for the given persona.
// Unknown identifiers resolve to the default persona's instruction.
func SystemPrompt(id string) string {
	if prompt, ok := idToPrompt[id]; ok {
		return prompt
	}
	return idToPrompt[DefaultID]
}

// Known reports whether id names a catalog entry.
func Known(id string) bool {
	_, ok := idToPrompt[id]
	return ok
}

// IDs returns the persona identifiers in stable order.
func IDs() []string {
	ids := make([]string, 0, len(idToPrompt))
	for id := range idToPrompt {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
