// env.go
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by FromEnv.
const EnvPrefix = "WECHAT"

// EnvSettings lists the settings that can be supplied through the environment,
// e.g. WECHAT_HTTP_RETRIES=2.
type EnvSettings struct {
	ResponseType    string `envconfig:"RESPONSE_TYPE" default:"array"`
	HTTPRetries     int    `envconfig:"HTTP_RETRIES" default:"1"`
	HTTPRetryDelay  int    `envconfig:"HTTP_RETRY_DELAY" default:"500"`
	HTTPLogTemplate string `envconfig:"HTTP_LOG_TEMPLATE"`
	BaseURI         string `envconfig:"BASE_URI"`
	Token           string `envconfig:"TOKEN"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// FromEnv builds a Repository from WECHAT_* environment variables.
func FromEnv() (*Repository, error) {
	var s EnvSettings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("failed to load settings from environment: %w", err)
	}

	values := map[string]any{
		KeyResponseType:   s.ResponseType,
		KeyHTTPRetries:    s.HTTPRetries,
		KeyHTTPRetryDelay: s.HTTPRetryDelay,
		KeyLogLevel:       s.LogLevel,
	}
	if s.HTTPLogTemplate != "" {
		values[KeyHTTPLogTemplate] = s.HTTPLogTemplate
	}
	if s.BaseURI != "" {
		values[KeyBaseURI] = s.BaseURI
	}
	if s.Token != "" {
		values[KeyToken] = s.Token
	}
	return New(values), nil
}
