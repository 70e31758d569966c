package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roflexi/internal/domain"

	"go.uber.org/zap"
)

// Session is a signed-in session obtained at the end of registration.
type Session struct {
	UID       string
	Role      domain.Role
	Token     string
	ExpiresAt time.Time
}

// HandoffClient turns a SessionBootstrap into a Session. It never retries:
// any failure means registration has to start over.
type HandoffClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewHandoffClient(baseURL string, opts ...Option) *HandoffClient {
	// options are shared with the orchestrator
	o := NewOrchestrator(baseURL, opts...)
	return &HandoffClient{baseURL: o.baseURL, http: o.http, timeout: o.timeout, log: o.log}
}

// Complete signs in with the bootstrap's token, minting a fresh one first
// when the bootstrap carries only a uid. The consumed token is cleared from b.
func (h *HandoffClient) Complete(ctx context.Context, b *SessionBootstrap) (*Session, error) {
	if b == nil || b.UID == "" {
		return nil, ErrNoBootstrap
	}

	token := b.CustomToken
	if token == "" {
		minted, err := h.Remint(ctx, b.UID, b.ExchangeCode)
		if err != nil {
			return nil, err
		}
		token = minted
	}

	session, err := h.SignIn(ctx, token)
	if err != nil {
		return nil, err
	}
	b.CustomToken = ""
	b.ExchangeCode = ""
	h.log.Info("handoff complete", zap.String("uid", session.UID))
	return session, nil
}

// Remint asks the server for a new bootstrap token for uid.
func (h *HandoffClient) Remint(ctx context.Context, uid, exchangeCode string) (string, error) {
	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	status, err := h.postJSON(ctx, "/createCustomToken", map[string]string{
		"uid":          uid,
		"exchangeCode": exchangeCode,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("remint token: %w", err)
	}
	if status != http.StatusOK || out.Token == "" {
		return "", &HandoffError{Step: "remint", Status: status, Message: out.Error, Code: out.Code}
	}
	return out.Token, nil
}

// SignIn exchanges a bootstrap token for a session.
func (h *HandoffClient) SignIn(ctx context.Context, token string) (*Session, error) {
	var out struct {
		OK           bool      `json:"ok"`
		UID          string    `json:"uid"`
		Role         string    `json:"role"`
		SessionToken string    `json:"sessionToken"`
		ExpiresAt    time.Time `json:"expiresAt"`
		Message      string    `json:"message"`
		Code         string    `json:"code"`
	}
	status, err := h.postJSON(ctx, "/session", map[string]string{"token": token}, &out)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if status != http.StatusOK || !out.OK {
		return nil, &HandoffError{Step: "sign-in", Status: status, Message: out.Message, Code: out.Code}
	}
	return &Session{
		UID:       out.UID,
		Role:      domain.Role(out.Role),
		Token:     out.SessionToken,
		ExpiresAt: out.ExpiresAt,
	}, nil
}

func (h *HandoffClient) postJSON(ctx context.Context, path string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}
