// Package views holds the HTML templates and stylesheet of the todo pages.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names
const (
	PageLists    = "lists.tmpl"
	PageNewList  = "new-list.tmpl"
	PageList     = "list.tmpl"
	PageEditList = "edit-list.tmpl"
)

var funcs = template.FuncMap{
	// flashKinds fixes the display order of flash groups
	"flashKinds": func() []string { return []string{"error", "info", "success"} },
}

// Templates parses every page and partial into one set
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}

// Static serves the stylesheet
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}
