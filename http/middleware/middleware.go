package middleware

import (
	"net/http"
)

// An Adapter allows chaining middlewares together.
type Adapter func(http.Handler) http.Handler

// NoopAdapter passes the handler through without adapting it.
//
// Constructors missing required arguments return NoopAdapter
// so a middleware chain never holds a nil Adapter.
func NoopAdapter(handler http.Handler) http.Handler { return handler }

// Chain glues the set of adapters to the handler.
func Chain(handler http.Handler, adapters ...Adapter) http.Handler {
	//NOTE: Loop in reverse to preserve middleware order
	for i := len(adapters) - 1; i >= 0; i-- {
		handler = adapters[i](handler)
	}

	return handler
}
