// status.go
// Package status provides helpers for classifying HTTP status codes returned by the platform API.
package status

import (
	"net/http"
)

// IsSuccessStatusCode reports whether the status code is in the 2xx range.
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsErrorStatusCode reports whether the status code is treated as a failed exchange
// when HTTP errors are enabled (4xx and 5xx).
func IsErrorStatusCode(statusCode int) bool {
	return statusCode >= http.StatusBadRequest
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
// Redirect status codes instruct the client to make a new request to a different URI, as defined in the response's Location header.
//
// - 301 Moved Permanently
// - 302 Found
// - 303 See Other: the redirected request is issued with GET.
// - 307 Temporary Redirect: the method and body are preserved.
// - 308 Permanent Redirect: the method and body are preserved.
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsClientError reports whether the status code is in the 4xx range.
func IsClientError(statusCode int) bool {
	return statusCode >= 400 && statusCode < 500
}

// IsServerError reports whether the status code is in the 5xx range.
func IsServerError(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}

// IsTransientError reports whether the status code indicates a transient upstream failure
// that is worth retrying later.
func IsTransientError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
