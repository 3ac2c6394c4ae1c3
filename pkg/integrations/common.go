package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/natalchart/pkg/buildinfo"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the service has nothing for a request.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// UserAgent identifies this build to upstream services.
func UserAgent() string {
	return "natalchart/" + buildinfo.Version
}
