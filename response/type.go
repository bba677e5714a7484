// type.go
package response

import (
	"strings"

	"github.com/fossabot/wechat-1/errors"
)

// Type selects the shape a response is converted into.
type Type string

const (
	TypeRaw        Type = "raw"
	TypeCollection Type = "collection"
	TypeArray      Type = "array"
	TypeObject     Type = "object"
	TypeJSON       Type = "json"
)

// Types lists every supported shape.
var Types = []Type{TypeRaw, TypeCollection, TypeArray, TypeObject, TypeJSON}

// ParseType resolves the "response_type" setting. A missing or unknown value is a configuration error.
func ParseType(value any) (Type, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		if value == nil {
			return "", errors.NewInvalidConfigError("response_type", nil, "missing response type")
		}
		return "", errors.NewInvalidConfigError("response_type", value, "response type must be a string")
	}

	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", errors.NewInvalidConfigError("response_type", s, "unsupported response type, expected one of raw, collection, array, object, json")
}

func (t Type) String() string {
	return string(t)
}
