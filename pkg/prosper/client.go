package prosper

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/prosper-autoinvest/pkg/httpclient"
)

// Known API roots.
const (
	ProductionURL = "https://api.prosper.com/v1/"
	StagingURL    = "https://api.stg.circleone.com/v1/"
)

// Client talks to the Prosper API with a fixed set of credentials.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	http       httpclient.Client
}

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	httpClient httpclient.Client
}

// WithBaseURL overrides the API root, e.g. StagingURL or a test server.
// An empty value keeps the production root.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimSpace(baseURL)
		}
	}
}

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *clientConfig) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the given credentials. It performs no network I/O.
func New(username, password string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	cfg := &clientConfig{baseURL: ProductionURL}
	for _, opt := range opts {
		opt(cfg)
	}

	base, err := normalizeBaseURL(cfg.baseURL)
	if err != nil {
		return nil, err
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = httpclient.NewRestyClient(0)
	}

	return &Client{
		baseURL:    base,
		authHeader: basicAuth(username, password),
		http:       hc,
	}, nil
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate requests the account resource and reports whether the credentials work.
// Any failure, whether status, decode or transport, yields false.
func (c *Client) Authenticate(ctx context.Context) bool {
	if _, err := c.GetAccount(ctx); err != nil {
		return false
	}
	return true
}

// resolve joins path to the base URL. Bytes that cannot appear in a request line
// (spaces in an OData expression, for instance) are percent-encoded; everything else,
// including existing escapes, is kept as given.
func (c *Client) resolve(path string) string {
	return c.baseURL + escapeRequestTarget(strings.TrimPrefix(path, "/"))
}

func escapeRequestTarget(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch <= 0x20 || ch >= 0x7f || strings.IndexByte(unsafeTargetBytes, ch) >= 0 {
			fmt.Fprintf(&b, "%%%02X", ch)
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

const unsafeTargetBytes = "\"<>\\^`{|}"

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": c.authHeader,
		"Accept":        "application/json",
	}
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", fmt.Errorf("%w: %q carries a query or fragment", ErrInvalidBaseURL, raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u.String(), nil
}
