// httpclient/options.go
package httpclient

// RequestOptions describes the payload of one call. At most one of Form, JSON and Multipart may be set.
type RequestOptions struct {
	// Query is merged into the query string of the request path.
	Query map[string]string
	// Form is sent as an application/x-www-form-urlencoded body.
	Form map[string]string
	// JSON is encoded as the request body.
	JSON any
	// Multipart parts are written in slice order.
	Multipart []MultipartPart
	// Headers are added to the standard and configured headers.
	Headers map[string]string

	// withToken adds the holder's token as the "token" query parameter, resolved per attempt.
	withToken bool
}

// MultipartPart is one part of a multipart/form-data body. A part with a FilePath is streamed from disk;
// otherwise Contents is sent as a plain form field.
type MultipartPart struct {
	Name     string
	FilePath string
	Contents string
}

func (o RequestOptions) bodyKinds() int {
	n := 0
	if o.Form != nil {
		n++
	}
	if o.JSON != nil {
		n++
	}
	if o.Multipart != nil {
		n++
	}
	return n
}
