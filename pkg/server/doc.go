// Package server wires the denoid HTTP routes onto gorilla/mux.
//
//	GET /                      redirect to /x
//	GET /x?q=                  module list filtered by the committed query
//	GET /x/{name}              module page, or the not-found page
//	GET /x/{name}/{rest}       not-found page
//	GET /api/modules?q=        filtered snapshot as JSON
//	GET /api/modules/{name}    one module as JSON
//
// Health, readiness, and metrics are served by NewHealthHandler on a
// separate port.
package server
