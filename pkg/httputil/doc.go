// Package httputil provides HTTP response helpers, request parsing, and the
// middleware chain shared by the denoid server.
//
// # Middleware
//
//	chain := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware,
//		httputil.RecoveryMiddleware(renderPanic),
//	)
//	handler := chain(router)
//
// RequestIDMiddleware must run before LoggingMiddleware so request lines
// carry the request ID.
//
// # Responses
//
//	httputil.WriteJSON(w, http.StatusOK, payload)
//	httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid query")
package httputil
