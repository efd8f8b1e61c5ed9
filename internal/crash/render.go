package crash

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// ErrTemplate means the issue template could not be parsed or executed.
var ErrTemplate = errors.New("crash report template error")

//go:embed template/issue_template.txt
var issueTemplateText string

// Report is a rendered crash report, ready to be filed.
type Report struct {
	Title string
	Body  string
}

// templateData holds the placeholders the issue template may reference.
// Renaming a field breaks existing templates.
type templateData struct {
	ToolVersion          string
	Command              string
	GcloudVersion        string
	DockerVersion        string
	CloudSQLProxyVersion string
	RuntimeVersion       string
	Traceback            string
	Platform             string
}

// Renderer turns a crash Context and Snapshot into a Report.
type Renderer struct {
	tmpl *template.Template
	err  error
}

// NewRenderer parses text. A malformed template is remembered and reported
// by every Render call.
func NewRenderer(text string) *Renderer {
	tmpl, err := ParseTemplate(text)
	return &Renderer{tmpl: tmpl, err: err}
}

var defaultRenderer = NewRenderer(issueTemplateText)

// DefaultRenderer renders with the embedded issue template.
func DefaultRenderer() *Renderer {
	return defaultRenderer
}

// ParseTemplate parses an issue template and checks that every placeholder
// resolves, so packaging mistakes surface before a crash needs the template.
func ParseTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("issue").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	if err := tmpl.Execute(io.Discard, templateData{}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return tmpl, nil
}

// Render is pure: the same inputs always produce the same Report.
func (r *Renderer) Render(c Context, s Snapshot) (Report, error) {
	if r == nil || r.err != nil {
		err := ErrTemplate
		if r != nil {
			err = r.err
		}
		return Report{}, err
	}
	data := templateData{
		ToolVersion:          s.ToolVersion,
		Command:              c.Command,
		GcloudVersion:        s.GcloudVersion,
		DockerVersion:        s.DockerVersion,
		CloudSQLProxyVersion: s.CloudSQLProxyVersion,
		RuntimeVersion:       strings.ReplaceAll(s.RuntimeVersion, "\n", " "),
		Traceback:            c.Traceback,
		Platform:             s.Platform,
	}
	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return Report{Title: Title(c), Body: b.String()}, nil
}

// Title formats the one-line issue title, e.g.
// `ValueError:bad config during "deploy new"`.
func Title(c Context) string {
	return fmt.Sprintf("%s:%s during \"%s\"", c.Kind, c.Message, c.Command)
}
