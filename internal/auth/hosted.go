package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HostedConfig points at a GoTrue-compatible auth service.
type HostedConfig struct {
	BaseURL   string
	AnonKey   string
	JWTSecret string
}

// HostedAuthenticator signs in through the hosted service's REST API and
// verifies its HS256 access tokens locally with the project secret.
type HostedAuthenticator struct {
	baseURL    string
	anonKey    string
	signer     *TokenSigner
	httpClient httpDoer
	now        func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// NewHostedAuthenticator builds a client for the hosted auth service.
func NewHostedAuthenticator(cfg HostedConfig) (*HostedAuthenticator, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, eris.New("hosted auth requires a base URL and an anon key")
	}

	signer, err := NewTokenSigner(cfg.JWTSecret, "", 0)
	if err != nil {
		return nil, eris.Wrap(err, "hosted auth jwt secret")
	}

	return &HostedAuthenticator{
		baseURL:    baseURL,
		anonKey:    strings.TrimSpace(cfg.AnonKey),
		signer:     signer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}, nil
}

// SetHTTPClient 替换底层 HTTP 客户端，主要用于测试。
func (a *HostedAuthenticator) SetHTTPClient(client httpDoer) {
	if client != nil {
		a.httpClient = client
	}
}

func (a *HostedAuthenticator) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	return a.requestToken(ctx, "password", map[string]string{"email": email, "password": password})
}

func (a *HostedAuthenticator) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingCode
	}

	return a.requestToken(ctx, "pkce", map[string]string{"auth_code": code})
}

func (a *HostedAuthenticator) Verify(_ context.Context, accessToken string) (*User, error) {
	return a.signer.Parse(accessToken)
}

func (a *HostedAuthenticator) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}

	req, err := a.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "calling auth logout")
	}
	defer resp.Body.Close()

	// 401 表示令牌已失效，视为已登出。
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return responseError(resp)
	}
	return nil
}

func (a *HostedAuthenticator) requestToken(ctx context.Context, grantType string, payload map[string]string) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "encoding token request")
	}

	req, err := a.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grantType, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "calling auth token endpoint")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidCredentials
	case resp.StatusCode >= 400:
		return nil, responseError(resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, eris.Wrap(err, "decoding token response")
	}
	if token.AccessToken == "" {
		return nil, eris.New("auth service returned an empty access token")
	}

	expiresAt := a.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if token.ExpiresAt > 0 {
		expiresAt = time.Unix(token.ExpiresAt, 0)
	}

	return &Session{
		AccessToken: token.AccessToken,
		ExpiresAt:   expiresAt,
		User:        User{ID: token.User.ID, Email: token.User.Email},
	}, nil
}

func (a *HostedAuthenticator) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, eris.Wrapf(err, "building auth request %s", path)
	}
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "devmarkblog-admin/1.0")
	return req, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(body))
	if msg != "" {
		return fmt.Errorf("auth service returned %s (%s)", resp.Status, msg)
	}
	return fmt.Errorf("auth service returned %s", resp.Status)
}
