package parking

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath        = "/login"
	loginMethod      = "Pas"
	loginStatusError = 2
)

// Auth owns the session: credentials, bearer token, permit-media defaults
// and the guard that keeps at most one login in flight.
type Auth struct {
	username   string
	password   string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu                sync.RWMutex
	token             string
	authenticated     bool
	permitMediaTypeID *int64
	permitMediaCode   *string

	logins singleflight.Group
}

// NewAuth validates cfg and returns an unauthenticated session.
func NewAuth(cfg Config, opts ...Option) (*Auth, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newAuth(cfg, o)
}

func newAuth(cfg Config, o clientOptions) (*Auth, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	// Copy so the caller's client keeps its own timeout.
	httpClient := &http.Client{}
	if o.httpClient != nil {
		clone := *o.httpClient
		httpClient = &clone
	}
	httpClient.Timeout = timeout

	a := &Auth{
		username:   cfg.Username,
		password:   cfg.Password,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: httpClient,
		logger:     o.logger,
	}
	if cfg.PermitMediaTypeID != nil {
		id := *cfg.PermitMediaTypeID
		a.permitMediaTypeID = &id
	}
	return a, nil
}

// IsAuthenticated reports whether a token is held
func (a *Auth) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authenticated
}

// EnsureLoggedIn logs in unless the session is already authenticated.
// Concurrent callers share a single login call and its outcome.
func (a *Auth) EnsureLoggedIn(ctx context.Context) error {
	if a.IsAuthenticated() {
		return nil
	}
	return a.runLogin(ctx, false)
}

// Login performs a fresh login even when a token is held.
func (a *Auth) Login(ctx context.Context) error {
	return a.runLogin(ctx, true)
}

func (a *Auth) runLogin(ctx context.Context, force bool) error {
	// The shared login must not die with the first caller's context;
	// the HTTP client timeout still bounds it.
	loginCtx := context.WithoutCancel(ctx)
	ch := a.logins.DoChan("login", func() (any, error) {
		if !force && a.IsAuthenticated() {
			return nil, nil
		}
		return nil, a.login(loginCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &ConnectionError{Op: "login", Err: ctx.Err()}
	}
}

// Invalidate drops the token so the next request logs in again
func (a *Auth) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.authenticated = false
	a.mu.Unlock()
}

// invalidateToken clears the session only if it still holds token, so a
// request rejected with an old token does not discard a newer login.
func (a *Auth) invalidateToken(token string) {
	a.mu.Lock()
	if a.token == token {
		a.token = ""
		a.authenticated = false
	}
	a.mu.Unlock()
}

// MediaDefaults returns the current permit-media type id and code, either
// of which may be nil until discovered.
func (a *Auth) MediaDefaults() (typeID *int64, code *string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.permitMediaTypeID != nil {
		id := *a.permitMediaTypeID
		typeID = &id
	}
	if a.permitMediaCode != nil {
		c := *a.permitMediaCode
		code = &c
	}
	return typeID, code
}

func (a *Auth) setMediaDefaults(typeID int64, code string) {
	a.mu.Lock()
	a.permitMediaTypeID = &typeID
	a.permitMediaCode = &code
	a.mu.Unlock()
}

func (a *Auth) login(ctx context.Context) error {
	typeID, _ := a.MediaDefaults()
	if typeID == nil {
		id, err := a.fetchPermitMediaTypeID(ctx)
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.permitMediaTypeID = &id
		a.mu.Unlock()
		typeID = &id
	}

	a.logger.Debug().Int64("permit_media_type_id", *typeID).Msg("Logging in to parking service")

	payload := map[string]any{
		"identifier":        a.username,
		"loginMethod":       loginMethod,
		"password":          a.password,
		"permitMediaTypeID": *typeID,
	}
	data, err := a.loginCall(ctx, http.MethodPost, payload)
	if err != nil {
		return err
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return &AuthError{Reason: "unexpected login response"}
	}
	if status, err := intValue(obj["LoginStatus"], "LoginStatus"); err == nil && status == loginStatusError {
		message, _ := obj["ErrorMessage"].(string)
		if message == "" {
			message = "unknown authentication error"
		}
		return &AuthError{Reason: message}
	}

	token := tokenValue(obj["Token"])
	if token == "" {
		return &AuthError{Reason: "login response has no token"}
	}

	a.mu.Lock()
	a.token = token
	a.authenticated = true
	a.mu.Unlock()

	a.logger.Debug().Msg("Logged in to parking service")
	return nil
}

func (a *Auth) fetchPermitMediaTypeID(ctx context.Context) (int64, error) {
	data, err := a.loginCall(ctx, http.MethodGet, nil)
	if err != nil {
		return 0, err
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return 0, &AuthError{Reason: "expected login object"}
	}
	types, ok := obj["PermitMediaTypes"].([]any)
	if !ok {
		return 0, &AuthError{Reason: "expected PermitMediaTypes list"}
	}
	if len(types) == 0 {
		return 0, &AuthError{Reason: "no permit media types available"}
	}
	for _, t := range types {
		if _, ok := t.(map[string]any); !ok {
			return 0, &AuthError{Reason: "invalid permit media type entry"}
		}
	}

	id, err := intValue(types[0].(map[string]any)["ID"], "PermitMediaTypes[0].ID")
	if err != nil {
		return 0, &AuthError{Reason: "invalid permit media type ID", Err: err}
	}

	a.logger.Debug().Int64("permit_media_type_id", id).Msg("Discovered permit media type")
	return id, nil
}

// loginCall sends an unauthenticated request to the login endpoint and
// decodes the body. Decode failures are reported as AuthError.
func (a *Auth) loginCall(ctx context.Context, method string, payload any) (any, error) {
	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}
	resp, err := a.do(ctx, method, loginPath, body, a.defaultHeaders(), a.logger)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		closeBody(resp)
		return nil, rateLimitError(resp)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		closeBody(resp)
		return nil, &AuthError{Reason: "credentials rejected"}
	case resp.StatusCode >= http.StatusBadRequest:
		closeBody(resp)
		return nil, &AuthError{Reason: fmt.Sprintf("login returned status %d", resp.StatusCode)}
	}

	raw, err := readBody(resp, "login")
	if err != nil {
		return nil, err
	}
	data, err := DecodeBody(raw)
	if err != nil {
		return nil, &AuthError{Reason: "login response is not valid JSON", Err: err}
	}
	return data, nil
}

func (a *Auth) defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	return h
}

// buildHeaders returns the request headers and the token they carry.
func (a *Auth) buildHeaders(requiresAuth bool) (http.Header, string, error) {
	h := a.defaultHeaders()
	if !requiresAuth {
		return h, "", nil
	}

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if token == "" {
		return nil, "", &AuthError{Reason: "authentication token missing"}
	}

	h.Set("Authorization", "Token "+base64.StdEncoding.EncodeToString([]byte(token)))
	return h, token, nil
}

func tokenValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		if t.String() != "0" {
			return t.String()
		}
	}
	return ""
}
