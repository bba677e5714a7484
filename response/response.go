// response.go
// Package response converts HTTP responses from the platform API into the shape selected by the
// "response_type" setting.
package response

import (
	"encoding/json"
	"net/http"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Response is a fully buffered HTTP response together with the request line that produced it.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       []byte
	Method     string
	URL        string
}

// NewResponse captures resp with its already read body. The original body must not be read again.
func NewResponse(resp *http.Response, body []byte) *Response {
	r := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	if resp.Request != nil {
		r.Method = resp.Request.Method
		if resp.Request.URL != nil {
			r.URL = resp.Request.URL.String()
		}
	}
	if r.Header == nil {
		r.Header = http.Header{}
	}
	return r
}

// ContentType returns the Content-Type header value.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// String returns the body as text.
func (r *Response) String() string {
	return string(r.Body)
}

// ToArray decodes the body into an associative mapping. Bodies that are neither XML nor JSON
// decode to an empty mapping.
func (r *Response) ToArray() map[string]any {
	return toMap(r.ordered())
}

// ToCollection decodes the body into a key-ordered Collection.
func (r *Response) ToCollection() *Collection {
	return &Collection{items: r.ordered()}
}

// ToObject decodes a JSON body into a plain value, with numbers kept as json.Number.
// Non-JSON bodies fall back to ToArray.
func (r *Response) ToObject() any {
	if !isXML(r.ContentType(), r.Body) {
		if v, err := decodeJSONValue(stripControlCharacters(r.Body)); err == nil {
			return v
		}
	}
	return r.ToArray()
}

// Unmarshal decodes a JSON body into v.
func (r *Response) Unmarshal(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (r *Response) ordered() *orderedmap.OrderedMap[string, any] {
	return decodeBody(r.ContentType(), r.Body)
}
