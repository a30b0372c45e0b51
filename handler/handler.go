package handler

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ghostpeony/sidecar/config"
	"github.com/ghostpeony/sidecar/runtime"
)

// maxBodySize bounds the request body read for a command.
const maxBodySize = 1 << 20

type CommandHandlerParams struct {
	fx.In

	Handler runtime.Handler
	Config  config.Config
	Log     *zap.Logger
}

func NewCommandHandler(params CommandHandlerParams) *CommandHandler {
	return &CommandHandler{
		handler: params.Handler,
		apiKey:  params.Config.Auth.Key,
		log:     params.Log,
	}
}

// CommandHandler exposes a runtime handler over http.
type CommandHandler struct {
	handler runtime.Handler
	apiKey  string
	log     *zap.Logger
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)

	// Check for authorization
	if !h.authorized(r) {
		log.Debug("unauthorized request")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Debug("failed to read body", zap.Error(err))
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	request := runtime.Request{
		Path:   r.URL.Path,
		Method: strings.ToUpper(r.Method),
		Header: r.Header,
		Body:   body,
	}

	// Handle the request
	response := h.handler.Handle(r.Context(), request)

	// Map response headers
	for k, v := range response.Header {
		for _, vv := range v {
			w.Header().Add(k, vv)
		}
	}

	// Write response headers and status code
	w.WriteHeader(response.StatusCode)

	// Write response body
	if _, err := w.Write(response.Body); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}

func (h *CommandHandler) authorized(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}

	return subtle.ConstantTimeCompare([]byte(r.Header.Get("api-key")), []byte(h.apiKey)) == 1
}
