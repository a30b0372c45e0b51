package handler

import (
	"net/http"

	"github.com/ghostpeony/sidecar/internal/server"
)

// NewLegacyRoute serves commands passed in the command header.
func NewLegacyRoute(handler *CommandHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("/", handler)
}

func NewCommandRoute(handler *CommandHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("/{command}", handler)
}

func NewHealthRoute() server.HttpHandlerResult {
	return server.AsHttpHandler("/health", http.HandlerFunc(HealthHandler))
}
