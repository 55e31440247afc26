// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
	"strings"
)

// HTTPHelper builds request headers for the dev.to API.
type HTTPHelper struct {
	userAgent string
	apiKey    string
}

// NewHTTPHelper creates a new HTTP helper. apiKey may be empty.
func NewHTTPHelper(userAgent, apiKey string) *HTTPHelper {
	return &HTTPHelper{userAgent: userAgent, apiKey: apiKey}
}

// IsRemoteURL reports whether raw is an absolute http(s) URL with a host.
func (h *HTTPHelper) IsRemoteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	if h.userAgent != "" {
		headers.Set("User-Agent", h.userAgent)
	}

	headers.Set("Accept", "application/json")

	if h.apiKey != "" {
		headers.Set("Api-Key", h.apiKey)
	}

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}
