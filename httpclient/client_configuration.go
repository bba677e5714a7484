// httpclient/client_configuration.go
// Description: This file contains functions to load, default and validate ClientConfig values from a JSON file or environment variables.
package httpclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fossabot/wechat-1/config"
	"github.com/fossabot/wechat-1/errors"
	"github.com/fossabot/wechat-1/logger"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = logger.LogOutputJSON
	DefaultLogConsoleSeparator   = "	"
	DefaultTimeout               = 30 * time.Second
	DefaultMaxRedirects          = 5
	DefaultRetries               = config.DefaultRetries
	DefaultRetryDelay            = config.DefaultRetryDelayMS * time.Millisecond
	ConfigFileExtension          = ".json"
	EnvPrefix                    = config.EnvPrefix
)

const (
	keyResponseType = config.KeyResponseType
	keyRetries      = config.KeyHTTPRetries
	keyRetryDelay   = config.KeyHTTPRetryDelay
	keyLogTemplate  = config.KeyHTTPLogTemplate
)

func newDefaultSettings() *config.Repository {
	return config.New(nil)
}

// LoadConfigFromFile loads http client configuration settings from a JSON file.
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	absPath, err := validateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	byteValue, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	var cfg ClientConfig
	if err := json.Unmarshal(byteValue, &cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal JSON: %w", err)
	}

	SetDefaultValuesClientConfig(&cfg)

	return &cfg, nil
}

// LoadConfigFromEnv loads HTTP client configuration settings from WECHAT_* environment variables,
// e.g. WECHAT_BASE_URI or WECHAT_CUSTOM_HEADERS="X-Env:prod,X-Team:ops". Unset variables keep their defaults.
func LoadConfigFromEnv() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("could not load configuration from environment: %w", err)
	}

	SetDefaultValuesClientConfig(&cfg)

	return &cfg, nil
}

// SetDefaultValuesClientConfig fills zero-valued options with their defaults.
func SetDefaultValuesClientConfig(cfg *ClientConfig) {
	setDefaultValue(&cfg.LogLevel, DefaultLogLevelString)
	setDefaultValue(&cfg.LogOutputFormat, DefaultLogOutputFormatString)
	setDefaultValue(&cfg.LogConsoleSeparator, DefaultLogConsoleSeparator)
	setDefaultValue(&cfg.Timeout, DefaultTimeout)
	setDefaultValue(&cfg.MaxRedirects, DefaultMaxRedirects)
}

func setDefaultValue[T comparable](field *T, defaultValue T) {
	var zero T
	if *field == zero {
		*field = defaultValue
	}
}

// validateClientConfig checks the options BuildClient cannot work without.
func validateClientConfig(cfg ClientConfig) error {
	if cfg.TokenHolder == nil {
		return errors.NewInvalidConfigError("TokenHolder", nil, "a token holder is required")
	}

	if cfg.BaseURI != "" {
		u, err := url.Parse(cfg.BaseURI)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewInvalidConfigError("BaseURI", cfg.BaseURI, "base URI must be an absolute URL")
		}
	}

	if cfg.Timeout < 0 {
		return errors.NewInvalidConfigError("Timeout", cfg.Timeout, "timeout cannot be negative")
	}

	if cfg.FollowRedirects && cfg.MaxRedirects < 1 {
		return errors.NewInvalidConfigError("MaxRedirects", cfg.MaxRedirects, "maximum redirects must be at least 1 when following redirects")
	}

	if cfg.LogOutputFormat != "" && cfg.LogOutputFormat != logger.LogOutputJSON && cfg.LogOutputFormat != logger.LogOutputHumanReadable {
		return errors.NewInvalidConfigError("LogOutputFormat", cfg.LogOutputFormat, `log output format must be "json" or "console"`)
	}

	for _, name := range cfg.Middlewares {
		if !isBuiltinMiddleware(name) {
			return errors.NewInvalidConfigError("Middlewares", name, "unknown middleware")
		}
	}

	return nil
}

// validateFilePath checks a configuration file path and returns it cleaned and absolute.
func validateFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("unable to resolve the absolute path: %s, error: %w", path, err)
	}

	if filepath.Ext(absPath) != ConfigFileExtension {
		return "", fmt.Errorf("invalid file extension for configuration file: %s, expected %s", absPath, ConfigFileExtension)
	}

	return absPath, nil
}
