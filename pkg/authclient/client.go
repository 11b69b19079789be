package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidRefreshToken is returned when the server rejects a refresh
// or signout token.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(authServiceURL, "/"),
		loginPath: "/login",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithLoginPath changes the path credentials are posted to.
func (c *Client) WithLoginPath(p string) *Client {
	c.loginPath = p
	return c
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"message"`
	HTTPStatus string            `json:"httpStatus"`
	Timestamp  string            `json:"timestamp"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service: %d %s", e.StatusCode, e.Message)
}

func (c *Client) Login(ctx context.Context, username, password string) (*Tokens, error) {
	var out Tokens
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, c.loginPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	var out Tokens
	if err := c.post(ctx, "/auth/refresh", map[string]string{"token": refreshToken}, &out); err != nil {
		return nil, mapTokenError(err)
	}
	return &out, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return mapTokenError(c.post(ctx, "/auth/signout", map[string]string{"token": refreshToken}, nil))
}

func mapTokenError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Errors == nil {
		return fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	return err
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if len(data) == 0 || json.Unmarshal(data, apiErr) != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
