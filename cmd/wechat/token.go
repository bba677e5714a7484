package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fossabot/wechat-1/auth"
	"github.com/fossabot/wechat-1/config"
	"github.com/fossabot/wechat-1/httpclient"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/response"
)

const tokenRefreshBuffer = 5 * time.Minute

// tokenResponse is the body of GET cgi-bin/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// newTokenFetcher returns a Fetcher that exchanges the app credentials for an access token.
// The token endpoint is called through its own client, which carries no token and never retries.
func newTokenFetcher(baseURI, appID, secret string, log logger.Logger) (auth.Fetcher, error) {
	client, err := httpclient.BuildClient(httpclient.ClientConfig{
		BaseURI:           baseURI,
		TokenHolder:       auth.NewStaticToken(""),
		Logger:            log,
		HideSensitiveData: true,
	}, true)
	if err != nil {
		return nil, err
	}
	client.Settings().Set(config.KeyHTTPRetries, 0)

	return func(ctx context.Context) (auth.Credential, error) {
		resp, err := client.RequestRaw(ctx, "cgi-bin/token", http.MethodGet, httpclient.RequestOptions{
			Query: map[string]string{
				"grant_type": "client_credential",
				"appid":      appID,
				"secret":     secret,
			},
		})
		if err != nil {
			return auth.Credential{}, err
		}
		return parseTokenResponse(resp, time.Now())
	}, nil
}

func parseTokenResponse(resp *response.Response, now time.Time) (auth.Credential, error) {
	var body tokenResponse
	if err := resp.Unmarshal(&body); err != nil {
		return auth.Credential{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.ErrCode != 0 {
		return auth.Credential{}, fmt.Errorf("token endpoint returned errcode %d: %s", body.ErrCode, body.ErrMsg)
	}

	cred := auth.Credential{Token: body.AccessToken}
	if body.ExpiresIn > 0 {
		cred.ExpiresAt = now.Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return cred, nil
}
