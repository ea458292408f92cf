package touchpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/provider"
)

// ErrMissingCredentials is returned by NewClient when the gateway
// credentials are not configured. Initiation then fails fast instead
// of discovering the problem on the first charge.
var ErrMissingCredentials = errors.New("touchpay: missing gateway credentials")

// Client is the low-level HTTP client for the TouchPay gateway.
type Client struct {
	baseURL  string
	username string
	password string
	hc       *http.Client
	logger   *logrus.Logger
}

// NewClient builds a gateway client. The HTTP client carries a bounded
// timeout so a stalled gateway cannot hold a request task forever.
func NewClient(baseURL, username, password string, logger *logrus.Logger) (*Client, error) {
	if baseURL == "" || username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		hc:       &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}, nil
}

// token fetches a short-lived access token. The token is fetched per
// call and never cached; a stale-token retry path is not worth the
// bookkeeping at this call volume.
func (c *Client) token(ctx context.Context) (string, error) {
	url := c.baseURL + "/oauth/token?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", provider.NewError(http.StatusBadGateway, fmt.Sprintf("token exchange failed: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithField("status", resp.StatusCode).Error("touchpay token exchange rejected")
		return "", provider.NewError(resp.StatusCode, string(body))
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", provider.NewError(http.StatusBadGateway, fmt.Sprintf("malformed token response: %v", err))
	}
	if res.AccessToken == "" {
		return "", provider.NewError(http.StatusBadGateway, "token response carried no access_token")
	}
	return res.AccessToken, nil
}

// post sends an authenticated JSON POST and returns the raw response
// body. Non-2xx answers become a provider.Error carrying the gateway's
// HTTP status.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, provider.NewError(http.StatusBadGateway, fmt.Sprintf("gateway request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(http.StatusBadGateway, fmt.Sprintf("read gateway response: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"path":   path,
		}).Error("touchpay request rejected")
		return nil, provider.NewError(resp.StatusCode, string(body))
	}
	return json.RawMessage(body), nil
}
