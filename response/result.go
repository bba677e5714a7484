// result.go
package response

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Result holds a response converted into one shape. Exactly one of the accessors matching
// Type() carries the converted value; Raw() is always available.
type Result struct {
	typ        Type
	raw        *Response
	collection *Collection
	array      map[string]any
	object     any
	json       string
}

// Shape converts resp into the shape t.
func Shape(resp *Response, t Type) (*Result, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}

	result := &Result{typ: t, raw: resp}
	switch t {
	case TypeCollection:
		result.collection = resp.ToCollection()
	case TypeArray:
		result.array = resp.ToArray()
	case TypeObject:
		result.object = resp.ToObject()
	case TypeJSON:
		result.json = resp.String()
	}
	return result, nil
}

// Type returns the shape of the result.
func (r *Result) Type() Type { return r.typ }

// Raw returns the underlying response.
func (r *Result) Raw() *Response { return r.raw }

// Collection returns the collection shape, or nil.
func (r *Result) Collection() *Collection { return r.collection }

// Array returns the associative shape, or nil.
func (r *Result) Array() map[string]any { return r.array }

// Object returns the plain decoded shape, or nil.
func (r *Result) Object() any { return r.object }

// JSON returns the string shape.
func (r *Result) JSON() string { return r.json }

// Value returns whichever shape the result holds.
func (r *Result) Value() any {
	switch r.typ {
	case TypeRaw:
		return r.raw
	case TypeCollection:
		return r.collection
	case TypeArray:
		return r.array
	case TypeObject:
		return r.object
	default:
		return r.json
	}
}

// ErrCode returns the platform "errcode" of the body, or 0 when absent.
func (r *Result) ErrCode() int {
	code, _ := ErrCode(r.raw)
	return code
}

// ErrMsg returns the platform "errmsg" of the body, or "" when absent.
func (r *Result) ErrMsg() string {
	if r.raw == nil {
		return ""
	}
	msg, _ := r.raw.ToArray()["errmsg"].(string)
	return msg
}

// ErrCode extracts the "errcode" field of a response body. The second return value is false
// when the field is absent or not an integer. XML bodies are decoded too, so a top-level
// <errcode> element in an XML reply is found and can trigger the expired-token retry.
func ErrCode(resp *Response) (int, bool) {
	if resp == nil {
		return 0, false
	}
	v, ok := resp.ToArray()["errcode"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		return int(n), true
	}
	return 0, false
}
