package notes

import (
	"bytes"
	"text/template"
)

// githubReleaseTemplate renders the notes body of a GitHub Release entry.
// Breaking changes and deprecations lead; commit groups follow as lists.
const githubReleaseTemplate = `{{- if .Title -}}
# {{.Title}}

{{end -}}
{{- if .BreakingNote -}}
## Breaking Changes

{{range .BreakingNote -}}
{{- if .Scope -}}
### {{.Scope}}

{{end -}}
- {{indent .Text}}
{{end}}
{{end -}}
{{- if .Deprecations -}}
## Deprecations

{{range .Deprecations -}}
{{- if .Scope -}}
### {{.Scope}}

{{end -}}
- {{indent .Text}}
{{end}}
{{end -}}
{{- range .Groups -}}
{{- if .Title -}}
### {{.Title}}
{{else -}}
### general
{{end -}}
{{range .Commits -}}
- [{{short .SHA}}]({{commitURL .SHA}}) | {{.Type}} | {{prLinks .Description}}
{{end}}
{{end -}}
`

// changelogTemplate renders a CHANGELOG.md entry. The anchor tag carries the
// version and is parsed back out when the changelog file is re-read.
const changelogTemplate = `<a name="{{.Version}}"></a>
# {{.Version}}{{if .Title}} "{{.Title}}"{{end}} ({{.DateStamp}})

{{if .BreakingNote -}}
## Breaking Changes

{{range .BreakingNote -}}
{{- if .Scope -}}
### {{.Scope}}

{{end -}}
- {{indent .Text}}
{{end}}
{{end -}}
{{- if .Deprecations -}}
## Deprecations

{{range .Deprecations -}}
{{- if .Scope -}}
### {{.Scope}}

{{end -}}
- {{indent .Text}}
{{end}}
{{end -}}
{{- range .Groups -}}
{{- if .Title -}}
### {{.Title}}
{{else -}}
### general
{{end -}}
| Commit | Type | Description |
| -- | -- | -- |
{{range .Commits -}}
| [{{short .SHA}}]({{commitURL .SHA}}) | {{.Type}} | {{prLinks .Description}} |
{{end}}
{{end -}}
`

// render executes one of the notes templates against a render context.
func (ctx *renderContext) render(name, text string, prLinks func(string) string) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"short":     shortSHA,
		"indent":    indentNote,
		"commitURL": ctx.CommitURL,
		"prLinks":   prLinks,
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}
