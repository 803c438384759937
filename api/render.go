package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []string{
	"index.html",
	"tools.html",
	"blog.html",
	"cv.html",
	"admin_form.html",
	"admin_cv_upload.html",
}

// renderer writes a page either as HTML from the embedded templates or as
// JSON when the client asks for it. Pending flash notices are consumed here.
type renderer struct {
	pages     map[string]*template.Template
	flash     *flash.Store
	responder Responder
	logger    zerolog.Logger
	now       func() time.Time
}

func newRenderer(flashStore *flash.Store) (*renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
	}

	pages := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	logger := log.With().Str("handlerName", "renderer").Logger()
	return &renderer{
		pages:     pages,
		flash:     flashStore,
		responder: NewResponder(logger),
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.Notices = append(p.Notices, rd.flash.ReadAndClear(w, r)...)
	p.Now = rd.now()

	if wantsJSON(r) {
		rd.responder.WriteJSONStatus(w, status, p)
		return
	}

	tmpl, ok := rd.pages[name]
	if !ok {
		rd.responder.WriteError(w, fmt.Errorf("unknown template %q", name))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		rd.logger.Error().Err(err).Str("template", name).Msg("error rendering template")
		rd.responder.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.Error().Err(err).Msg("error writing page")
	}
}

// notify queues notices for the next render. A signing failure only loses the notice.
func (rd *renderer) notify(w http.ResponseWriter, r *http.Request, notices ...flash.Notice) {
	if err := rd.flash.Add(w, r, notices...); err != nil {
		rd.logger.Warn().Err(err).Msg("could not queue flash notice")
	}
}

// redirect finishes a post with a 303 so a reload does not resubmit.
func (rd *renderer) redirect(w http.ResponseWriter, r *http.Request, target string, notices ...flash.Notice) {
	rd.notify(w, r, notices...)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// wantsJSON reports whether the Accept header prefers JSON over HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
