// decode.go
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// decodeBody decodes an XML or JSON body into an ordered mapping. It never fails: an undecodable
// body yields an empty mapping.
func decodeBody(contentType string, body []byte) *orderedmap.OrderedMap[string, any] {
	content := stripControlCharacters(body)

	var (
		om  *orderedmap.OrderedMap[string, any]
		err error
	)
	if isXML(contentType, content) {
		om, err = decodeXML(content)
	} else {
		om, err = decodeJSON(content)
	}
	if err != nil || om == nil {
		return orderedmap.New[string, any]()
	}
	return om
}

// isXML reports whether the body should be decoded as XML: the Content-Type mentions xml
// or the body opens with an <xml> element.
func isXML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "xml") {
		return true
	}
	return len(body) >= 4 && strings.EqualFold(string(body[:4]), "<xml")
}

// stripControlCharacters removes C0 and C1 control characters. Invalid UTF-8 bytes are kept.
func stripControlCharacters(body []byte) []byte {
	out := make([]byte, 0, len(body))
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size == 1 {
			out = append(out, body[0])
			body = body[1:]
			continue
		}
		if r >= 0x20 && (r < 0x80 || r > 0x9f) {
			out = append(out, body[:size]...)
		}
		body = body[size:]
	}
	return out
}

func decodeJSONValue(content []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

// decodeJSON reads a top-level JSON object keeping its key order. A top-level array is keyed by index.
func decodeJSON(content []byte) (*orderedmap.OrderedMap[string, any], error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	om := orderedmap.New[string, any]()
	switch tok {
	case json.Delim('{'):
		for decoder.More() {
			keyTok, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			var value any
			if err := decoder.Decode(&value); err != nil {
				return nil, err
			}
			om.Set(key, value)
		}
	case json.Delim('['):
		for i := 0; decoder.More(); i++ {
			var value any
			if err := decoder.Decode(&value); err != nil {
				return nil, err
			}
			om.Set(strconv.Itoa(i), value)
		}
	default:
		return nil, fmt.Errorf("unexpected top-level JSON token %v", tok)
	}

	// closing delimiter
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return om, nil
}

// decodeXML maps the children of the document element to ordered keys. Elements holding only text
// become strings, elements with children become nested maps, and repeated elements become lists.
func decodeXML(content []byte) (*orderedmap.OrderedMap[string, any], error) {
	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xml document has no root element")
	}

	om := orderedmap.New[string, any]()
	if !hasElementChildren(root) {
		om.Set(root.Data, root.InnerText())
		return om, nil
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		value := xmlValue(child)
		if existing, ok := om.Get(child.Data); ok {
			om.Set(child.Data, appendValue(existing, value))
			continue
		}
		om.Set(child.Data, value)
	}
	return om, nil
}

func xmlValue(n *xmlquery.Node) any {
	if !hasElementChildren(n) {
		return n.InnerText()
	}
	m := map[string]any{}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		value := xmlValue(child)
		if existing, ok := m[child.Data]; ok {
			m[child.Data] = appendValue(existing, value)
			continue
		}
		m[child.Data] = value
	}
	return m
}

func hasElementChildren(n *xmlquery.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func appendValue(existing, value any) any {
	if list, ok := existing.([]any); ok {
		return append(list, value)
	}
	return []any{existing, value}
}

func toMap(om *orderedmap.OrderedMap[string, any]) map[string]any {
	m := make(map[string]any, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}
