// config.go
// Package config holds the process-wide settings read by the client at request time.
// Keys are dotted paths into a nested map, e.g. "http.retries".
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fossabot/wechat-1/logger"
)

// Setting keys read by the client.
const (
	KeyResponseType    = "response_type"
	KeyHTTPRetries     = "http.retries"
	KeyHTTPRetryDelay  = "http.retry_delay"
	KeyHTTPLogTemplate = "http.log_template"
	KeyBaseURI         = "base_uri"
	KeyToken           = "token"
	KeyLogLevel        = "log.level"
)

// Defaults applied to every new Repository.
const (
	DefaultResponseType = "array"
	DefaultRetries      = 1
	DefaultRetryDelayMS = 500
)

// Repository is a concurrency-safe settings store with dotted-key lookup.
type Repository struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates a Repository holding the defaults overlaid with values.
// values may be nested maps or use dotted keys.
func New(values map[string]any) *Repository {
	r := &Repository{values: map[string]any{}}
	r.Set(KeyResponseType, DefaultResponseType)
	r.Set(KeyHTTPRetries, DefaultRetries)
	r.Set(KeyHTTPRetryDelay, DefaultRetryDelayMS)
	r.Set(KeyHTTPLogTemplate, logger.TemplateDebug)
	r.Merge(values)
	return r
}

// LoadFile reads a JSON settings document into a new Repository.
func LoadFile(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return New(values), nil
}

// Merge overlays values onto the repository. Nested maps are merged key by key.
func (r *Repository) Merge(values map[string]any) {
	for key, value := range values {
		if nested, ok := value.(map[string]any); ok {
			prefixed := make(map[string]any, len(nested))
			for k, v := range nested {
				prefixed[key+"."+k] = v
			}
			r.Merge(prefixed)
			continue
		}
		r.Set(key, value)
	}
}

// Set stores value under the dotted key, creating intermediate maps as needed.
func (r *Repository) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := strings.Split(key, ".")
	node := r.values
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
}

// Get returns the value stored under the dotted key.
func (r *Repository) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var current any = r.values
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// Has reports whether the dotted key is set.
func (r *Repository) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// GetString returns the value as a string, or def when missing.
func (r *Repository) GetString(key, def string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// GetInt returns the value as an int, or def when missing or not numeric.
func (r *Repository) GetInt(key string, def int) int {
	v, ok := r.Get(key)
	if !ok {
		return def
	}
	if i, ok := toInt(v); ok {
		return i
	}
	return def
}

// GetDuration interprets the value as a count of unit, e.g. GetDuration("http.retry_delay", time.Millisecond, 500).
func (r *Repository) GetDuration(key string, unit time.Duration, def int) time.Duration {
	return time.Duration(r.GetInt(key, def)) * unit
}

// All returns a deep copy of the stored settings.
func (r *Repository) All() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyMap(r.values)
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(math.Round(n)), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(math.Round(f)), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
