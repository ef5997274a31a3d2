package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/search"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

// EmptyStateMessage is shown instead of rows when nothing matches
const EmptyStateMessage = "Tidak menemukan modul... :("

// SearchPlaceholder is the search input hint
const SearchPlaceholder = "Input nama modul dan tekan enter"

// Filterer produces the filtered view of a snapshot. *search.Cache
// satisfies it.
type Filterer interface {
	Filter(generation uint64, modules []provider.Module, query string) []provider.Module
}

type plainFilter struct{}

func (plainFilter) Filter(_ uint64, modules []provider.Module, query string) []provider.Module {
	return search.Filter(modules, query)
}

// Row is one module entry in the list
type Row struct {
	ID   string
	Name string
	Desc string
	Href string
}

// ListPage is the view model of the module list
type ListPage struct {
	Query      string
	Rows       []Row
	Total      int
	Generation uint64
	BuiltAt    time.Time
}

// Empty reports whether the empty-state message replaces the rows
func (p ListPage) Empty() bool {
	return len(p.Rows) == 0
}

// NewListPage filters snap by the committed query. A blank query lists the
// whole snapshot; otherwise matches keep snapshot order. A nil filter uses
// search.Filter directly.
func NewListPage(snap *snapshot.Snapshot, query string, filter Filterer) ListPage {
	if filter == nil {
		filter = plainFilter{}
	}
	modules := filter.Filter(snap.Generation, snap.Modules, query)

	rows := make([]Row, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, Row{
			ID:   "module-" + m.Name,
			Name: m.Name,
			Desc: m.Desc,
			Href: ModulePath(m.Name),
		})
	}

	return ListPage{
		Query:      query,
		Rows:       rows,
		Total:      len(snap.Modules),
		Generation: snap.Generation,
		BuiltAt:    snap.BuiltAt,
	}
}

// ModulePath is the site-relative link to a module's page. The name is
// escaped as a single path segment.
func ModulePath(name string) string {
	return "/x/" + url.PathEscape(name)
}

// DetailPage is the view model of a single module
type DetailPage struct {
	Module        provider.Module
	ImportURL     string
	BranchURL     string
	DefaultBranch string
}

// NewDetailPage builds the detail view of m for site
func NewDetailPage(site *Site, m provider.Module) DetailPage {
	return DetailPage{
		Module:        m,
		ImportURL:     site.ImportURL(m.Name, "", ""),
		BranchURL:     site.ImportURL(m.Name, site.Config.DefaultBranch, ""),
		DefaultBranch: site.Config.DefaultBranch,
	}
}

// NotFoundPage is the view model of the not-found page
type NotFoundPage struct {
	Path string
}

// ErrorPage is the view model of the error page. Title is omitted from the
// JSON dump when the status has no standard text.
type ErrorPage struct {
	StatusCode int    `json:"statusCode"`
	Title      string `json:"title,omitempty"`
}

// ResolveStatus picks the response status, then the error's status, then 404
func ResolveStatus(respStatus, errStatus int) int {
	if respStatus > 0 {
		return respStatus
	}
	if errStatus > 0 {
		return errStatus
	}
	return http.StatusNotFound
}

// NewErrorPage resolves the standard title for status
func NewErrorPage(status int) ErrorPage {
	return ErrorPage{
		StatusCode: status,
		Title:      http.StatusText(status),
	}
}

// Heading is the "{status} {title}" headline
func (p ErrorPage) Heading() string {
	if p.Title == "" {
		return strconv.Itoa(p.StatusCode)
	}
	return strconv.Itoa(p.StatusCode) + " " + p.Title
}

// Dump is the page's JSON representation with two-space indentation
func (p ErrorPage) Dump() string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
