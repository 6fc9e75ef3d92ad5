package coinqvest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.coinqvest.com/api/v1"

	headerDigestKey       = "X-Digest-Key"
	headerDigestSignature = "X-Digest-Signature"
	headerDigestTimestamp = "X-Digest-Timestamp"
)

// Response is the raw outcome of an API call. Non-2xx statuses are not errors at
// this level; callers inspect HTTPStatusCode.
type Response struct {
	HTTPStatusCode int
	ResponseBody   []byte
}

type MerchantClient struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	logEnabled bool
	now        func() time.Time
}

type Option func(*MerchantClient)

func WithBaseURL(baseURL string) Option {
	return func(c *MerchantClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *MerchantClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger enables request/response logging when enabled is true.
func WithLogger(logger *zap.SugaredLogger, enabled bool) Option {
	return func(c *MerchantClient) {
		if logger != nil {
			c.logger = logger
		}
		c.logEnabled = enabled
	}
}

func NewMerchantClient(apiKey, apiSecret string, opts ...Option) *MerchantClient {
	c := &MerchantClient{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop().Sugar(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *MerchantClient) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *MerchantClient) Post(ctx context.Context, path string, params any) (*Response, error) {
	body, err := json.Marshal(params)

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, body)
}

func (c *MerchantClient) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))

	if err != nil {
		return nil, err
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerDigestKey, c.apiKey)
	req.Header.Set(headerDigestTimestamp, timestamp)
	req.Header.Set(headerDigestSignature, c.sign(path, timestamp, body))

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log("coinqvest request", "method", method, "path", path, "body", string(body))

	res, err := c.httpClient.Do(req)

	if err != nil {
		c.log("coinqvest request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("coinqvest %s %s: %w", method, path, err)
	}

	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, fmt.Errorf("failed to read coinqvest response: %w", err)
	}

	c.log("coinqvest response", "method", method, "path", path, "status", res.StatusCode, "body", string(resBody))

	return &Response{
		HTTPStatusCode: res.StatusCode,
		ResponseBody:   resBody,
	}, nil
}

// sign computes hex(hmac-sha256(secret, path + timestamp + body)).
func (c *MerchantClient) sign(path, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(path))
	mac.Write([]byte(timestamp))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func (c *MerchantClient) log(msg string, keysAndValues ...any) {
	if !c.logEnabled {
		return
	}

	c.logger.Infow(msg, keysAndValues...)
}
