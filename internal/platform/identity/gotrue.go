package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	"chronicle_backend/internal/shared/ratelimiter"
)

// GoTrueConfig holds configuration for a Supabase/GoTrue compatible auth server.
type GoTrueConfig struct {
	BaseURL        string        // e.g. "https://<project>.supabase.co"
	ServiceRoleKey string        // admin key used for account creation
	AnonKey        string        // public key sent as apikey on user-facing calls; falls back to ServiceRoleKey
	Timeout        time.Duration // HTTP request timeout
}

// GoTrue is an identity provider backed by a remote GoTrue auth server.
// Calls go through the supabase auth-go client; each call gets its own
// transport so the caller's context and the rate limiter apply, and the
// raw status and body are kept for error mapping.
type GoTrue struct {
	cfg     GoTrueConfig
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// NewGoTrue creates a GoTrue provider. limiter may be nil.
func NewGoTrue(cfg GoTrueConfig, client *http.Client, limiter ratelimiter.RateLimiterInterface) *GoTrue {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AnonKey == "" {
		cfg.AnonKey = cfg.ServiceRoleKey
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoTrue{cfg: cfg, client: client, limiter: limiter}
}

// gotrueError covers the error shapes returned by different GoTrue versions.
type gotrueError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return "request rejected by identity provider"
}

// CreateAccount creates a pre-confirmed user through the admin API.
func (g *GoTrue) CreateAccount(ctx context.Context, email, password string) (string, error) {
	api, rt := g.api(ctx, g.cfg.ServiceRoleKey)
	res, err := api.WithToken(g.cfg.ServiceRoleKey).AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &password,
		EmailConfirm: true,
	})
	if rejected, ferr := rt.failure("admin create user", err); ferr != nil {
		if !rejected {
			return "", ferr
		}
		ge := rt.decodeError()
		kind := KindInvalid
		msg := ge.text()
		if ge.ErrorCode == "email_exists" || strings.Contains(strings.ToLower(msg), "already been registered") {
			kind = KindDuplicate
		}
		return "", &ProviderError{Kind: kind, Message: msg}
	}

	if res.ID == uuid.Nil {
		return "", fmt.Errorf("gotrue returned user without id")
	}
	return res.ID.String(), nil
}

// VerifyCredentials exchanges email and password for an access token.
func (g *GoTrue) VerifyCredentials(ctx context.Context, email, password string) (*Session, error) {
	api, rt := g.api(ctx, g.cfg.AnonKey)
	res, err := api.SignInWithEmailPassword(email, password)
	if rejected, ferr := rt.failure("password grant", err); ferr != nil {
		if !rejected {
			return nil, ferr
		}
		slog.Debug("gotrue rejected credentials", "status", rt.status, "message", rt.decodeError().text())
		return nil, ErrInvalidCredentials
	}

	if res.AccessToken == "" || res.User.ID == uuid.Nil {
		return nil, fmt.Errorf("gotrue returned incomplete session")
	}
	return &Session{
		Identity:    Identity{ID: res.User.ID.String(), Email: res.User.Email},
		AccessToken: res.AccessToken,
	}, nil
}

// ResolveToken asks the auth server who owns the token.
func (g *GoTrue) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	api, rt := g.api(ctx, g.cfg.AnonKey)
	res, err := api.WithToken(token).GetUser()
	if rejected, ferr := rt.failure("get user", err); ferr != nil {
		if rejected {
			return nil, ErrInvalidToken
		}
		return nil, ferr
	}

	if res.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: res.ID.String(), Email: res.Email}, nil
}

// api builds an auth-go client bound to one call.
func (g *GoTrue) api(ctx context.Context, apiKey string) (auth.Client, *callTransport) {
	base := g.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	rt := &callTransport{ctx: ctx, base: base, limiter: g.limiter}

	hc := *g.client
	hc.Transport = rt
	if g.cfg.Timeout > 0 {
		hc.Timeout = g.cfg.Timeout
	}
	return auth.New("", apiKey).WithCustomAuthURL(g.cfg.BaseURL + "/auth/v1").WithClient(hc), rt
}

// callTransport attaches the call context, waits on the limiter and
// records the last response so status codes survive auth-go's string errors.
type callTransport struct {
	ctx     context.Context
	base    http.RoundTripper
	limiter ratelimiter.RateLimiterInterface

	status int
	body   []byte
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(t.ctx); err != nil {
			return nil, err
		}
	}
	res, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if cerr := res.Body.Close(); cerr != nil {
		slog.Warn("failed to close response body", "error", cerr)
	}
	if err != nil {
		return nil, fmt.Errorf("read gotrue response: %w", err)
	}
	t.status = res.StatusCode
	t.body = raw
	res.Body = io.NopCloser(bytes.NewReader(raw))
	return res, nil
}

// failure classifies a client error. rejected is true when the server
// answered with a 4xx; any other failure is returned as an infrastructure error.
func (t *callTransport) failure(op string, err error) (rejected bool, _ error) {
	switch {
	case err == nil && t.status >= 200 && t.status < 300:
		return false, nil
	case t.status == 0:
		return false, fmt.Errorf("gotrue %s: %w", op, err)
	case t.status >= 500:
		return false, fmt.Errorf("gotrue %s: http %d", op, t.status)
	case t.status >= 400:
		return true, fmt.Errorf("gotrue %s: http %d", op, t.status)
	default:
		return false, fmt.Errorf("gotrue %s: unexpected status %d: %v", op, t.status, err)
	}
}

func (t *callTransport) decodeError() gotrueError {
	var ge gotrueError
	_ = json.Unmarshal(t.body, &ge)
	return ge
}
