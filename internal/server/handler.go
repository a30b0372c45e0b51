package server

import (
	"net/http"

	"go.uber.org/fx"
)

// HttpHandler is a handler mounted on the server mux.
type HttpHandler struct {
	// Pattern is the http.ServeMux pattern, e.g. /{command}
	Pattern string
	Handler http.Handler
}

// HttpHandlerResult adds a handler to the "handlers" group
// consumed by the server.
type HttpHandlerResult struct {
	fx.Out

	Handler *HttpHandler `group:"handlers"`
}

func AsHttpHandler(
	pattern string,
	handler http.Handler,
) HttpHandlerResult {
	return HttpHandlerResult{
		Handler: &HttpHandler{
			Pattern: pattern,
			Handler: handler,
		},
	}
}
