package runtime

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ghostpeony/sidecar/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidMethod   = errors.New("invalid method")
	ErrCommandNotFound = errors.New("command not found")
	ErrInvalidCommand  = errors.New("invalid command")
)

// HandlerParams defines the dependencies for the runtime handler.
type HandlerParams struct {
	fx.In

	Runtime Runtime

	Log *zap.Logger
}

// Handler is the interface for handling runtime requests.
type Handler interface {
	Handle(ctx context.Context, request Request) Response
}

// RuntimeHandler maps command requests onto a runtime.
type RuntimeHandler struct {
	runtime Runtime

	log *zap.Logger
}

// NewRuntimeHandler creates a new runtime handler.
func NewRuntimeHandler(params HandlerParams) Handler {
	return &RuntimeHandler{
		runtime: params.Runtime,
		log:     params.Log,
	}
}

// Handle handles a runtime request.
func (h *RuntimeHandler) Handle(ctx context.Context, req Request) Response {
	log := h.log.With(
		zap.String("path", req.Path),
		zap.String("method", req.Method),
	)

	commandStr, ok := h.getCommand(req)
	if !ok {
		log.Debug("missing command")
		return newErrorResponse(ErrCommandNotFound)
	}

	log = log.With(zap.String("command", commandStr))

	// Parse the raw command string into a Command type
	command, ok := models.ParseCommand(commandStr)
	if !ok {
		log.Debug("invalid command")
		return newErrorResponse(ErrInvalidCommand)
	}

	if !methodAllowed(command, req.Method) {
		log.Debug("invalid method")
		return newErrorResponse(ErrInvalidMethod)
	}

	switch command {
	case models.CommandStart:
		msg, err := h.runtime.Start(ctx)
		return h.messageResponse(log, msg, err)
	case models.CommandStop:
		msg, err := h.runtime.Stop(ctx)
		return h.messageResponse(log, msg, err)
	case models.CommandCheckHealth:
		msg, err := h.runtime.CheckHealth(ctx)
		return h.messageResponse(log, msg, err)
	case models.CommandStatus:
		running, err := h.runtime.Status(ctx)
		if err != nil {
			log.Debug("failed to handle command", zap.Error(err))
			return newErrorResponse(err)
		}
		return newJSONResponse(http.StatusOK, StatusResponse{Running: running})
	case models.CommandGetBackendURL:
		return newJSONResponse(http.StatusOK, URLResponse{URL: h.runtime.BackendURL()})
	}

	return newErrorResponse(ErrInvalidCommand)
}

func (h *RuntimeHandler) messageResponse(log *zap.Logger, msg string, err error) Response {
	if err != nil {
		log.Debug("failed to handle command", zap.Error(err))
		return newErrorResponse(err)
	}

	return newJSONResponse(http.StatusOK, MessageResponse{Message: msg})
}

func (h *RuntimeHandler) getCommand(req Request) (string, bool) {
	if commandStr := req.Header.Get("command"); commandStr != "" {
		return commandStr, true
	}

	path := strings.Trim(req.Path, "/")
	if path == "" {
		return "", false
	}

	pathElements := strings.Split(path, "/")
	if len(pathElements) == 1 {
		return pathElements[0], true
	}

	return "", false
}

func methodAllowed(command models.Command, method string) bool {
	method = strings.ToUpper(method)

	if command.Mutating() {
		return method == http.MethodPost
	}

	return method == http.MethodGet || method == http.MethodPost
}
