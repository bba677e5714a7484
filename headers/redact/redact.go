// headers/redact/redact.go
package redact

import (
	"net/http"
	"net/url"
	"strings"
)

// Redacted replaces sensitive values in logs.
const Redacted = "REDACTED"

// sensitiveHeaders lists header names whose values never reach the logs when hiding is enabled.
var sensitiveHeaders = map[string]bool{
	"Accesstoken":         true,
	"Authorization":       true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"Proxy-Authorization": true,
}

// sensitiveQueryKeys lists query parameters carrying credentials.
var sensitiveQueryKeys = map[string]bool{
	"token":        true,
	"access_token": true,
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && sensitiveHeaders[http.CanonicalHeaderKey(key)] {
		return Redacted
	}
	return value
}

// RedactHeaders returns a copy of h with sensitive values replaced.
func RedactHeaders(hideSensitiveData bool, h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		for _, v := range values {
			out.Add(name, RedactSensitiveHeaderData(hideSensitiveData, name, v))
		}
	}
	return out
}

// RedactURL returns the URL as a string with credential query parameters replaced.
func RedactURL(hideSensitiveData bool, u *url.URL) string {
	if u == nil {
		return ""
	}
	if !hideSensitiveData || u.RawQuery == "" {
		return u.String()
	}

	query := u.Query()
	for key := range query {
		if sensitiveQueryKeys[strings.ToLower(key)] {
			query.Set(key, Redacted)
		}
	}

	redacted := *u
	redacted.RawQuery = query.Encode()
	return redacted.String()
}
