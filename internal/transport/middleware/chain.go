// Package middleware holds the HTTP cross-cutting layers: request id,
// logging, panic recovery, CORS, bearer auth, the admin role gate, and
// per-IP rate limiting.
package middleware

import "net/http"

// Middleware wraps an http.Handler with one cross-cutting concern.
type Middleware func(http.Handler) http.Handler

// Chain folds mws into one Middleware. The first argument runs outermost:
// Chain(a, b)(h) serves requests as a(b(h)).
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
