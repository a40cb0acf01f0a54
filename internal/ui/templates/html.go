// Package templates renders the dashboard page and the fragments the SSE
// handlers patch into it.
package templates

import (
	"context"
	"html/template"
	"strings"

	"github.com/a-h/templ"
)

// fromTemplate executes the named template of set as a templ component.
func fromTemplate(set *template.Template, name string, data any) templ.Component {
	return templ.FromGoHTML(set.Lookup(name), data)
}

// RenderString renders c to a string, for SSE element patches.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// sseGet is the Datastar action that asks endpoint for fresh patches.
func sseGet(endpoint string) template.JS {
	return template.JS("@get('" + endpoint + "')")
}
