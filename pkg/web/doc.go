// Package web renders the denoid HTML views: the module list, a module's
// page, the not-found page, and the error page.
//
// Site settings come from a YAML file (see SiteConfig) whose intro is
// Markdown rendered with goldmark. SiteStore reloads the file on change:
//
//	sites, err := web.NewSiteStore("site.yaml", logger)
//	go sites.Watch(ctx)
//	renderer, err := web.NewRenderer(sites)
//
// The list view is built from a snapshot and the committed query:
//
//	page := web.NewListPage(builder.Current(), r.URL.Query().Get("q"), cache)
//	body, err := renderer.RenderList(page)
package web
