package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

// Template names carried in mailer.EmailJob.Template.
const (
	Welcome        = "welcome"
	ProjectClaimed = "project_claimed"
	TaskCompleted  = "task_completed"
)

type source struct {
	subject string
	text    string
	html    string
}

var sources = map[string]source{
	Welcome: {
		subject: `Welcome to {{ .AppName }}`,
		text: `Hi {{ .Name }},

your {{ .Role }} account on {{ .AppName }} is ready. Sign in at {{ .AppURL }}.
`,
		html: `<p>Hi {{ .Name }},</p>
<p>your {{ .Role }} account on {{ .AppName }} is ready. <a href="{{ .AppURL }}">Sign in</a>.</p>`,
	},
	ProjectClaimed: {
		subject: `You took "{{ .Title }}"`,
		text: `Hi {{ .Name }},

you have taken the project "{{ .Title }}". Deadline: {{ .Deadline | date }}.
Track it under My Tasks at {{ .AppURL }}/task.
`,
		html: `<p>Hi {{ .Name }},</p>
<p>you have taken the project <strong>{{ .Title }}</strong>. Deadline: {{ .Deadline | date }}.</p>
<p><a href="{{ .AppURL }}/task">Open My Tasks</a></p>`,
	},
	TaskCompleted: {
		subject: `"{{ .Title }}" completed`,
		text: `Hi {{ .Name }},

"{{ .Title }}" is marked Completed. You earned {{ .Points }} point(s); your score is now {{ .TotalScore }}.
`,
		html: `<p>Hi {{ .Name }},</p>
<p><strong>{{ .Title }}</strong> is marked Completed. You earned {{ .Points }} point(s); your score is now {{ .TotalScore }}.</p>`,
	},
}

// date renders either a time.Time or an RFC3339 string (after a JSON round trip) as a calendar date.
func date(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format("02 January 2006")
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t.Format("02 January 2006")
		}
		return x
	default:
		return fmt.Sprintf("%v", v)
	}
}

var funcs = map[string]any{
	"date": date,
}

// Known reports whether name is a registered template.
func Known(name string) bool {
	_, ok := sources[name]
	return ok
}

// Render renders subject, text, and html for the given template name.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	src, ok := sources[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", src.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", src.text, data); err != nil {
		return "", "", "", err
	}
	tpl, err := htmpl.New(name + ".html").Funcs(htmpl.FuncMap(funcs)).Option("missingkey=zero").Parse(src.html)
	if err != nil {
		return "", "", "", fmt.Errorf("parse html %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec html %q: %w", name, err)
	}
	return strings.TrimSpace(subject), text, buf.String(), nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	tpl, err := texttpl.New(name).Funcs(texttpl.FuncMap(funcs)).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec text %q: %w", name, err)
	}
	return buf.String(), nil
}
