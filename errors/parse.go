// parse.go
package errors

import "strings"

// ParseContentTypeHeader parses the Content-Type header and returns the lower-cased MIME type and any parameters.
func ParseContentTypeHeader(header string) (string, map[string]string) {
	mainValue, params := parseHeader(header)
	return strings.ToLower(mainValue), params
}

// parseHeader extracts the main value of a header (e.g. the MIME type) and its parameters (like charset).
func parseHeader(header string) (string, map[string]string) {
	parts := strings.SplitN(header, ";", 2)
	mainValue := strings.TrimSpace(parts[0])

	params := make(map[string]string)
	if len(parts) > 1 {
		for _, part := range strings.Split(parts[1], ";") {
			kv := strings.SplitN(part, "=", 2)
			if len(kv) == 2 {
				params[strings.TrimSpace(kv[0])] = strings.Trim(strings.TrimSpace(kv[1]), "\"")
			}
		}
	}

	return mainValue, params
}
