// Command wechat issues calls against the platform API from the command line.
//
//	wechat --token T1 get cgi-bin/user/info openid=abc
//	wechat --appid wx1 --secret s3 post-json cgi-bin/message/custom/send '{"touser":"abc","msgtype":"text"}'
//	wechat --token T1 upload cgi-bin/media/upload --query type=image --file media=./a.jpg
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fossabot/wechat-1/auth"
	"github.com/fossabot/wechat-1/config"
	"github.com/fossabot/wechat-1/console"
	"github.com/fossabot/wechat-1/httpclient"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultBaseURI = "https://api.weixin.qq.com/"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath    string
	baseURI       string
	token         string
	appID         string
	appSecret     string
	responseType  string
	logLevel      string
	hideSensitive bool
	ignoreErrors  bool
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "wechat",
		Short:         "Call the platform HTTP API",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "JSON settings file; WECHAT_* environment variables are used when empty")
	flags.StringVar(&opts.baseURI, "base-uri", "", "API base URI (default "+defaultBaseURI+")")
	flags.StringVar(&opts.token, "token", "", "static access token")
	flags.StringVar(&opts.appID, "appid", "", "app ID used to fetch an access token when --token is not set")
	flags.StringVar(&opts.appSecret, "secret", "", "app secret used to fetch an access token when --token is not set")
	flags.StringVar(&opts.responseType, "response-type", "", "response shape: raw, collection, array, object or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error or none")
	flags.BoolVar(&opts.hideSensitive, "hide-sensitive", true, "redact tokens and cookies in logs")
	flags.BoolVar(&opts.ignoreErrors, "ignore-http-errors", false, "print 4xx/5xx responses instead of failing")

	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newPostCmd(opts))
	rootCmd.AddCommand(newPostJSONCmd(opts))
	rootCmd.AddCommand(newUploadCmd(opts))
	rootCmd.AddCommand(newRawCmd(opts))

	return rootCmd
}

// session is everything a subcommand needs to issue one call.
type session struct {
	client  *httpclient.Client
	printer *console.Printer
	log     logger.Logger
}

func (o *rootOptions) newSession(cmd *cobra.Command) (*session, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLogLevelFromString(settings.GetString(config.KeyLogLevel, "info"))
	log := newCLILogger(cmd.ErrOrStderr(), level)
	printer := console.NewPrinter(cmd.OutOrStdout(), log)

	baseURI := settings.GetString(config.KeyBaseURI, defaultBaseURI)

	holder, err := o.tokenHolder(settings, baseURI, log)
	if err != nil {
		return nil, err
	}

	middlewares := []string{httpclient.MiddlewareAuth}
	if level <= logger.LogLevelDebug {
		middlewares = append(middlewares, httpclient.MiddlewareLog)
	}

	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURI:           baseURI,
		Settings:          settings,
		TokenHolder:       holder,
		Logger:            log,
		HideSensitiveData: o.hideSensitive,
		IgnoreHTTPErrors:  o.ignoreErrors,
		Middlewares:       middlewares,
	}, true)
	if err != nil {
		return nil, err
	}

	return &session{client: client, printer: printer, log: log}, nil
}

// loadSettings reads the settings file or environment, then applies the flags on top.
func (o *rootOptions) loadSettings() (*config.Repository, error) {
	var (
		settings *config.Repository
		err      error
	)
	if o.configPath != "" {
		settings, err = config.LoadFile(o.configPath)
	} else {
		settings, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	overrides := map[string]string{
		config.KeyBaseURI:      o.baseURI,
		config.KeyToken:        o.token,
		config.KeyResponseType: o.responseType,
		config.KeyLogLevel:     o.logLevel,
	}
	for key, value := range overrides {
		if value != "" {
			settings.Set(key, value)
		}
	}
	return settings, nil
}

func (o *rootOptions) tokenHolder(settings *config.Repository, baseURI string, log logger.Logger) (auth.TokenHolder, error) {
	if token := settings.GetString(config.KeyToken, ""); token != "" {
		return auth.NewStaticToken(token), nil
	}
	if o.appID == "" || o.appSecret == "" {
		return nil, fmt.Errorf("an access token is required: pass --token or both --appid and --secret")
	}

	fetch, err := newTokenFetcher(baseURI, o.appID, o.appSecret, log)
	if err != nil {
		return nil, err
	}
	return auth.NewRefreshingToken(fetch, auth.WithLogger(log), auth.WithRefreshBuffer(tokenRefreshBuffer)), nil
}

func newCLILogger(w io.Writer, level logger.LogLevel) logger.Logger {
	if level == logger.LogLevelNone {
		return logger.NewNopLogger()
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapcore.Level(level))
	return logger.NewLogger(zap.New(core), level)
}

// parsePairs turns key=value arguments into a map.
func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		pairs[key] = value
	}
	return pairs, nil
}
