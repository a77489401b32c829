package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vportal/odata-client/internal/constants"
	"github.com/vportal/odata-client/internal/debug"
	"github.com/vportal/odata-client/internal/models"
)

// Client handles HTTP communication with an OData v4 service, transparently
// honoring the server's anti-forgery (CSRF) token contract: on a 403 response
// whose X-CSRF-Token header reads "required", the token is refetched once and
// the original call is re-issued with the fresh token.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	defaultHeaders map[string]string
	username       string
	password       string
	verbose        bool

	mu        sync.Mutex   // Guards csrfToken and refresh
	csrfToken string       // Cached security token; empty until first fetch
	refresh   *refreshCall // In-flight token refresh, nil when idle
}

// encodeQueryParams encodes URL query parameters with proper space encoding.
// OData servers expect spaces to be encoded as %20, not + (RFC 3986).
func encodeQueryParams(params url.Values) string {
	encoded := params.Encode()
	return strings.ReplaceAll(encoded, "+", "%20")
}

// New creates a new OData v4 client for the given service URL. The default
// headers are sent on every request and rank above the predefined OData
// headers but below per-request overrides.
func New(serviceURL string, defaultHeaders map[string]string, verbose bool) *Client {
	if !strings.HasSuffix(serviceURL, "/") {
		serviceURL += "/"
	}

	headers := make(map[string]string, len(defaultHeaders))
	for name, value := range defaultHeaders {
		headers[name] = value
	}

	return &Client{
		baseURL: serviceURL,
		httpClient: &http.Client{
			Timeout: time.Duration(constants.DefaultTimeout) * time.Second,
		},
		defaultHeaders: headers,
		verbose:        verbose,
	}
}

// SetBasicAuth configures basic authentication
func (c *Client) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

// SetHTTPClient replaces the underlying HTTP transport. Timeouts and
// cancellation are the transport's responsibility, not this layer's.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// SecurityToken returns the currently cached CSRF token, empty if none has
// been fetched yet.
func (c *Client) SecurityToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) setSecurityToken(token string) {
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
}

// Request performs an HTTP call against a resource path relative to the
// service URL. The payload, when non-nil, is JSON-serialized as the request
// body. Headers merge in precedence order: predefined OData v4 headers,
// constructor default headers, the cached CSRF token, per-request headers,
// and finally the fixed Content-Type, which cannot be overridden.
//
// A 403 response carrying "X-CSRF-Token: required" triggers one token
// refresh followed by a single retry of the original call; every other
// failure surfaces immediately as a *ResponseError.
func (c *Client) Request(ctx context.Context, method, resourcePath string, headers map[string]string, payload interface{}) (*models.ODataResponse, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
	}

	return c.do(ctx, method, resourcePath, headers, body, false)
}

// do issues a single attempt of the call, recursing at most once with the
// retried flag set after a successful token refresh.
func (c *Client) do(ctx context.Context, method, resourcePath string, headers map[string]string, body []byte, retried bool) (*models.ODataResponse, error) {
	req, err := c.buildRequest(ctx, method, resourcePath, headers, body)
	if err != nil {
		return nil, err
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] %s %s\n", req.Method, debug.MaskURL(req.URL.String()))
		fmt.Fprintf(os.Stderr, "[VERBOSE] Request headers: %s\n", maskHeaders(req.Header))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrRequestFailed, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	// Any response may rotate the token; "required" is the refresh signal,
	// not a token value.
	if token := resp.Header.Get(constants.CSRFTokenHeader); token != "" && !strings.EqualFold(token, constants.CSRFTokenRequired) {
		c.setSecurityToken(token)
		if c.verbose {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Updated CSRF token from response: %s\n", debug.MaskToken(token))
		}
	}

	if resp.StatusCode >= 400 {
		respErr := newResponseError(resp.StatusCode, respBody)

		if !retried && IsTokenRequired(resp) {
			if c.verbose {
				fmt.Fprintf(os.Stderr, "[VERBOSE] CSRF token required, refreshing and retrying once...\n")
			}
			// Clearing the cache is the refresh owner's job; doing it here
			// could wipe a token another caller just stored.
			if refreshErr := c.RefreshSecurityToken(ctx); refreshErr != nil {
				// Surface the original failure; the refresh outcome rides along.
				return nil, fmt.Errorf("%w (token refresh failed: %v)", respErr, refreshErr)
			}
			return c.do(ctx, method, resourcePath, headers, body, true)
		}

		return nil, respErr
	}

	return parseResponse(respBody)
}

// buildRequest creates an HTTP request with merged headers and authentication
func (c *Client) buildRequest(ctx context.Context, method, resourcePath string, headers map[string]string, body []byte) (*http.Request, error) {
	fullURL := c.baseURL + strings.TrimPrefix(resourcePath, "/")

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.ContentLength = int64(len(body))
	}

	// Predefined OData v4 headers, lowest precedence
	req.Header.Set(constants.UserAgent, constants.DefaultUserAgent)
	req.Header.Set(constants.Accept, constants.ContentTypeODataJSONV4)
	req.Header.Set(constants.ODataMaxVersionHeader, constants.ODataVersionValue)
	req.Header.Set(constants.ODataVersionHeader, constants.ODataVersionValue)

	for name, value := range c.defaultHeaders {
		req.Header.Set(name, value)
	}

	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()
	if token != "" {
		req.Header.Set(constants.CSRFTokenHeader, token)
	}

	for name, value := range headers {
		req.Header.Set(name, value)
	}

	// Fixed header, wins over every layer above
	req.Header.Set(constants.ContentType, constants.ContentTypeJSON)

	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	return req, nil
}

// maskHeaders renders headers for verbose output with sensitive values
// masked. Sorted so the dump is stable.
func maskHeaders(headers http.Header) string {
	var parts []string
	for name, values := range headers {
		for _, value := range values {
			parts = append(parts, fmt.Sprintf("%s: %s", name, debug.MaskHeader(name, value)))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// IsTokenRequired reports whether the response is the server's signal that
// the anti-forgery token must be (re)fetched: a 403 whose X-CSRF-Token
// header equals "required", compared case-insensitively.
func IsTokenRequired(resp *http.Response) bool {
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		return false
	}
	return strings.EqualFold(resp.Header.Get(constants.CSRFTokenHeader), constants.CSRFTokenRequired)
}
