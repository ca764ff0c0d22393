package templates

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"sync/atomic"
)

//go:embed *.html
var files embed.FS

var (
	tmpl   = template.Must(template.ParseFS(files, "*.html"))
	commit atomic.Value
)

func init() {
	commit.Store("dev")
}

// SetCommit sets the build revision shown in the page footer.
func SetCommit(c string) {
	commit.Store(c)
}

type pageData struct {
	Table  any
	Commit string
}

// RenderZones writes the zone markup of a table view.
func RenderZones(w io.Writer, view any) error {
	return tmpl.ExecuteTemplate(w, "zones", view)
}

// WriteHomeHTML serves the home page template
func WriteHomeHTML(w http.ResponseWriter, stats any) {
	writeHeaders(w)
	if err := tmpl.ExecuteTemplate(w, "home.html", pageData{Table: stats, Commit: commit.Load().(string)}); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// WriteTableHTML serves the table page with its current zones.
func WriteTableHTML(w http.ResponseWriter, view any) {
	writeHeaders(w)
	if err := tmpl.ExecuteTemplate(w, "table.html", pageData{Table: view, Commit: commit.Load().(string)}); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func writeHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
}
