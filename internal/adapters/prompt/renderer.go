package prompt

import (
	"bytes"
	"context"
	"text/template"

	"yagt/internal/ports"
)

// Renderer renders LLM prompts. A settings value under "prompt.<type>.<role>"
// overrides the built-in template.
type Renderer struct {
	Settings ports.SettingsRepository
}

func New(settings ports.SettingsRepository) *Renderer { return &Renderer{Settings: settings} }

func Key(typ, role string) string { return "prompt." + typ + "." + role }

func (r *Renderer) Render(ctx context.Context, typ, role string, data ports.PromptData) (string, error) {
	body := builtinTemplate(typ, role)
	if r.Settings != nil {
		if v, err := r.Settings.Get(ctx, Key(typ, role)); err == nil && v != "" {
			body = v
		}
	}
	tpl, err := template.New("prompt").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func builtinTemplate(typ, role string) string {
	if typ == "translate_line" && role == "system" {
		return "You translate video game dialogue{{if .SrcLang}} from {{.SrcLang}}{{end}} to {{.TgtLang}}. Keep speaker names, honorifics and line breaks. Do not add commentary. Return only JSON: {\"translation\":\"...\"}."
	}
	if typ == "translate_line" && role == "user" {
		return "{{if .Game}}game: {{.Game}}\n{{end}}source: {{.Text}}"
	}
	return ""
}
