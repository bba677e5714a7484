// httpclient/client.go
/* Package httpclient is the request client for the platform's HTTP API. It builds GET, form, JSON and
multipart requests against a base URI, attaches the access token, re-issues a request once when the API
reports an expired token, and converts the response into the shape selected by the "response_type"
setting. The main `Client` structure holds the embedded standard HTTP client, the settings repository
and a reference to the application's token holder. */
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fossabot/wechat-1/auth"
	"github.com/fossabot/wechat-1/config"
	"github.com/fossabot/wechat-1/cookiejar"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/metrics"
	"github.com/fossabot/wechat-1/proxy"
	"github.com/fossabot/wechat-1/redirecthandler"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Client issues calls against the platform API. It is safe for concurrent use.
type Client struct {
	config   ClientConfig
	http     *http.Client
	baseURL  *url.URL
	settings *config.Repository
	holder   auth.TokenHolder
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	middlewares []namedMiddleware

	Logger logger.Logger
}

// ClientConfig holds the build-time options of a Client.
type ClientConfig struct {
	// BaseURI is the API root, e.g. "https://api.weixin.qq.com/". Request paths are resolved against it.
	BaseURI string `json:"BaseURI" envconfig:"BASE_URI"`

	// Settings is the settings repository read at request time ("response_type", "http.retries", ...).
	Settings *config.Repository `json:"-" ignored:"true"`
	// TokenHolder supplies and refreshes the access token. It is owned by the caller.
	TokenHolder auth.TokenHolder `json:"-" ignored:"true"`

	// Log
	Logger              logger.Logger `json:"-" ignored:"true"` // Prebuilt logger; when nil one is built from the fields below.
	LogLevel            string        `json:"LogLevel" envconfig:"LOG_LEVEL"`
	LogOutputFormat     string        `json:"LogOutputFormat" envconfig:"LOG_OUTPUT_FORMAT"` // "json" or "console"
	LogConsoleSeparator string        `json:"LogConsoleSeparator" envconfig:"LOG_CONSOLE_SEPARATOR"`
	LogExportPath       string        `json:"LogExportPath" envconfig:"LOG_EXPORT_PATH"`
	HideSensitiveData   bool          `json:"HideSensitiveData" envconfig:"HIDE_SENSITIVE_DATA"`

	// Transport
	Timeout          time.Duration     `json:"Timeout" envconfig:"TIMEOUT"`
	IgnoreHTTPErrors bool              `json:"IgnoreHTTPErrors" envconfig:"IGNORE_HTTP_ERRORS"` // Return 4xx/5xx responses instead of a TransportError.
	CustomHeaders    map[string]string `json:"CustomHeaders" envconfig:"CUSTOM_HEADERS"`

	// Cookies
	CookieJarEnabled bool              `json:"CookieJarEnabled" envconfig:"COOKIE_JAR_ENABLED"`
	CustomCookies    map[string]string `json:"CustomCookies" envconfig:"CUSTOM_COOKIES"`

	// Redirects
	FollowRedirects bool `json:"FollowRedirects" envconfig:"FOLLOW_REDIRECTS"`
	MaxRedirects    int  `json:"MaxRedirects" envconfig:"MAX_REDIRECTS"`

	// Proxy
	ProxyURL      string `json:"ProxyURL" envconfig:"PROXY_URL"`
	ProxyUsername string `json:"ProxyUsername" envconfig:"PROXY_USERNAME"`
	ProxyPassword string `json:"-" envconfig:"PROXY_PASSWORD"`

	// Middlewares enables the named request stages, outermost first. Known names: "auth", "log".
	Middlewares []string `json:"Middlewares" envconfig:"MIDDLEWARES"`

	// MetricsRegisterer receives the client's Prometheus collectors. Nil keeps them unexported.
	MetricsRegisterer prometheus.Registerer `json:"-" ignored:"true"`
}

// BuildClient creates a new API client with the provided configuration.
func BuildClient(config ClientConfig, populateDefaultValues bool) (*Client, error) {
	if populateDefaultValues {
		SetDefaultValuesClientConfig(&config)
	}

	if err := validateClientConfig(config); err != nil {
		return nil, err
	}

	//region Logging

	log := config.Logger
	if log == nil {
		parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
		built, err := logger.BuildLogger(parsedLogLevel, config.LogOutputFormat, config.LogConsoleSeparator, config.LogExportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		log = built
	}

	//endregion

	//region HTTP

	var baseURL *url.URL
	if config.BaseURI != "" {
		parsed, err := url.Parse(config.BaseURI)
		if err != nil {
			return nil, fmt.Errorf("invalid base URI %q: %w", config.BaseURI, err)
		}
		baseURL = parsed
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, config.HideSensitiveData, log); err != nil {
		log.Error("Failed to set up redirect handler", zap.Error(err))
		return nil, err
	}

	if err := proxy.InitializeProxy(httpClient, proxy.Config{URL: config.ProxyURL, Username: config.ProxyUsername, Password: config.ProxyPassword}, log); err != nil {
		return nil, err
	}

	if err := cookiejar.SetupCookieJar(httpClient, config.CookieJarEnabled, log); err != nil {
		return nil, err
	}

	if len(config.CustomCookies) > 0 {
		if baseURL == nil {
			return nil, log.Error("Custom cookies require a base URI")
		}
		if err := cookiejar.LoadCustomCookies(httpClient, baseURL.String(), customCookies(config.CustomCookies), config.HideSensitiveData, log); err != nil {
			return nil, err
		}
	}

	//endregion

	//region Create

	settings := config.Settings
	if settings == nil {
		settings = newDefaultSettings()
	}

	client := &Client{
		config:   config,
		http:     httpClient,
		baseURL:  baseURL,
		settings: settings,
		holder:   config.TokenHolder,
		metrics:  metrics.New(config.MetricsRegisterer),
		Logger:   log,
	}

	for _, name := range config.Middlewares {
		mw, err := client.builtinMiddleware(name)
		if err != nil {
			return nil, err
		}
		client.middlewares = append(client.middlewares, namedMiddleware{name: name, mw: mw})
	}

	//endregion

	log.Debug("New API client initialized",
		zap.String("Base URI", config.BaseURI),
		zap.String("Logging Level", config.LogLevel),
		zap.String("Log Encoding Format", config.LogOutputFormat),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
		zap.Bool("Ignore HTTP Errors", config.IgnoreHTTPErrors),
		zap.Bool("Cookie Jar Enabled", config.CookieJarEnabled),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Int("Max Redirects", config.MaxRedirects),
		zap.Duration("Timeout", config.Timeout),
		zap.Strings("Middlewares", config.Middlewares),
		zap.Int("Retries", settings.GetInt(keyRetries, DefaultRetries)),
	)

	return client, nil
}

// Settings returns the settings repository read at request time.
func (c *Client) Settings() *config.Repository {
	return c.settings
}

// TokenHolder returns the token holder the client authenticates with.
func (c *Client) TokenHolder() auth.TokenHolder {
	return c.holder
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func customCookies(values map[string]string) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(values))
	for name, value := range values {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}
