package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/denoland-id/denoid/pkg/httputil"
	"github.com/denoland-id/denoid/pkg/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageList     = "list.html"
	pageDetail   = "detail.html"
	pageNotFound = "notfound.html"
	pageError    = "error.html"
)

// view is the data every template receives
type view struct {
	Site  *Site
	Title string
	Page  interface{}
}

// Renderer renders the HTML views against the current site configuration
type Renderer struct {
	sites SiteSource
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer(sites SiteSource) (*Renderer, error) {
	if sites == nil {
		sites = NewStaticSite(nil)
	}
	r := &Renderer{sites: sites, pages: make(map[string]*template.Template)}
	for _, name := range []string{pageList, pageDetail, pageNotFound, pageError} {
		t, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Site returns the site used for the next render
func (r *Renderer) Site() *Site {
	return r.sites.Site()
}

func (r *Renderer) render(name, title string, page interface{}) ([]byte, error) {
	site := r.sites.Site()
	var buf bytes.Buffer
	err := r.pages[name].ExecuteTemplate(&buf, "layout.html", view{
		Site:  site,
		Title: site.PageTitle(title),
		Page:  page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RenderList renders the module list
func (r *Renderer) RenderList(page ListPage) ([]byte, error) {
	return r.render(pageList, r.sites.Site().Config.Title, page)
}

// RenderDetail renders a module's page
func (r *Renderer) RenderDetail(page DetailPage) ([]byte, error) {
	return r.render(pageDetail, page.Module.Name, page)
}

// RenderNotFound renders the not-found page for path
func (r *Renderer) RenderNotFound(path string) ([]byte, error) {
	return r.render(pageNotFound, "404", NotFoundPage{Path: path})
}

// RenderError renders the error page
func (r *Renderer) RenderError(page ErrorPage) ([]byte, error) {
	return r.render(pageError, fmt.Sprint(page.StatusCode), page)
}

// ServeNotFound writes the not-found page for the request path with a 404
func (r *Renderer) ServeNotFound(w http.ResponseWriter, req *http.Request) {
	body, err := r.RenderNotFound(req.URL.Path)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	httputil.WriteHTML(w, http.StatusNotFound, body)
}

// ServeError writes the error page for status
func (r *Renderer) ServeError(w http.ResponseWriter, req *http.Request, status int) {
	page := NewErrorPage(ResolveStatus(status, 0))
	body, err := r.RenderError(page)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	httputil.WriteHTML(w, page.StatusCode, body)
}

// fail is the last resort when a template cannot render
func (r *Renderer) fail(w http.ResponseWriter, req *http.Request, err error) {
	observability.FromContext(req.Context()).WithError(err).Error("template rendering failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
