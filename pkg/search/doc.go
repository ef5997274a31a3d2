// Package search filters the module listing by a free-text query.
//
// # Overview
//
// Matching is a case-insensitive substring test over the two visible fields,
// name and desc. An empty or whitespace-only query matches everything.
// Filtering never reorders: results keep the relative order of the snapshot,
// which is already sorted by name.
//
// # Usage Example
//
//	visible := search.Filter(snap.Modules, r.URL.Query().Get("q"))
//
// Repeated commits against the same snapshot can be served from a Cache,
// keyed by snapshot generation and normalized query:
//
//	cache := search.NewCache(256, time.Minute)
//	visible := cache.Filter(snap.Generation, snap.Modules, query)
//
// # Related Packages
//
//   - pkg/debounce: decides when a typed query is committed
//   - pkg/web: renders the filtered view
package search
