package runtime

import "net/http"

// Request represents an incoming request.
type Request struct {
	Path   string
	Method string
	Body   []byte
	Header http.Header
}

// Response represents an outgoing response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// MessageResponse is returned by start, stop and check_health.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is returned by status.
type StatusResponse struct {
	Running bool `json:"running"`
}

// URLResponse is returned by get_backend_url.
type URLResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents error response data.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
