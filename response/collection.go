// collection.go
package response

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collection is a key-ordered view of a decoded response body. Keys keep the order in which
// they appeared on the wire.
type Collection struct {
	items *orderedmap.OrderedMap[string, any]
}

// Get returns the value stored under key.
func (c *Collection) Get(key string) (any, bool) {
	return c.items.Get(key)
}

// Has reports whether key is present.
func (c *Collection) Has(key string) bool {
	_, ok := c.items.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, c.items.Len())
	for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of keys.
func (c *Collection) Len() int {
	return c.items.Len()
}

// Each calls fn for every pair in order until fn returns false.
func (c *Collection) Each(fn func(key string, value any) bool) {
	for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// ToMap returns the contents as an unordered map.
func (c *Collection) ToMap() map[string]any {
	return toMap(c.items)
}

// ToJSON encodes the collection as a JSON object, preserving key order.
func (c *Collection) ToJSON() (string, error) {
	data, err := c.items.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalJSON implements json.Marshaler.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return c.items.MarshalJSON()
}
