// status_messages.go
package errors

import (
	"fmt"
	"net/http"
)

var statusMessages = map[int]string{
	http.StatusOK:                    "Request successful.",
	http.StatusCreated:               "Request to create or update resource successful.",
	http.StatusAccepted:              "The request was accepted for processing, but the processing has not completed.",
	http.StatusNoContent:             "Request successful. No content to send for this request.",
	http.StatusBadRequest:            "Bad request. Verify the syntax of the request.",
	http.StatusUnauthorized:          "Authentication failed. Verify the access token being used for the request.",
	http.StatusForbidden:             "Invalid permissions. Verify the account has the proper permissions for the resource.",
	http.StatusNotFound:              "Resource not found. Verify the URL path is correct.",
	http.StatusMethodNotAllowed:      "Method not allowed. The method specified is not allowed for the resource.",
	http.StatusRequestTimeout:        "Request timeout. The server timed out waiting for the request.",
	http.StatusRequestEntityTooLarge: "Payload too large. The uploaded media is larger than the server is willing to process.",
	http.StatusUnsupportedMediaType:  "Unsupported media type. The request entity has a media type which the server does not support.",
	http.StatusTooManyRequests:       "Too many requests. The API call quota has been exceeded.",
	http.StatusInternalServerError:   "Internal server error. The server encountered an unexpected condition that prevented it from fulfilling the request.",
	http.StatusNotImplemented:        "Not implemented. The server does not support the functionality required to fulfill the request.",
	http.StatusBadGateway:            "Bad gateway. The server received an invalid response from the upstream server.",
	http.StatusServiceUnavailable:    "Service unavailable. The server is currently unable to handle the request.",
	http.StatusGatewayTimeout:        "Gateway timeout. The server did not receive a timely response from the upstream server.",
}

// TranslateStatusCode provides a human-readable message for HTTP status codes.
// A zero status code means no response was received.
func TranslateStatusCode(statusCode int) string {
	if statusCode == 0 {
		return "No status code received, possible network or connection error."
	}
	if message, exists := statusMessages[statusCode]; exists {
		return message
	}
	if text := http.StatusText(statusCode); text != "" {
		return text + "."
	}
	return fmt.Sprintf("Unknown status code: %d", statusCode)
}
