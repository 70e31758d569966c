package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"roflexi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthServer struct {
	mu      sync.Mutex
	minted  []map[string]string
	signIns []string
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/createCustomToken", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.minted = append(f.minted, body)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if body["exchangeCode"] != "good-code" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid exchange code","code":"handoff/invalid-exchange-code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"fresh-token"}`))
	})
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.signIns = append(f.signIns, body["token"])
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if body["token"] == "used-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok":false,"message":"The custom token has already been used.","code":"auth/invalid-custom-token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"uid":"u-1","role":"provider","sessionToken":"sess","expiresAt":"2026-10-19T10:00:00Z"}`))
	})
	return mux
}

func TestHandoff_UsesProvidedToken(t *testing.T) {
	fake := &fakeAuthServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	b := &SessionBootstrap{UID: "u-1", CustomToken: "tok", ExchangeCode: "good-code", Role: domain.RoleProvider}
	s, err := NewHandoffClient(srv.URL).Complete(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "u-1", s.UID)
	assert.Equal(t, domain.RoleProvider, s.Role)
	assert.Equal(t, "sess", s.Token)
	assert.Equal(t, 2026, s.ExpiresAt.Year())

	assert.Empty(t, fake.minted)
	assert.Equal(t, []string{"tok"}, fake.signIns)
	assert.Empty(t, b.CustomToken)
	assert.Empty(t, b.ExchangeCode)
}

func TestHandoff_RemintsWhenTokenMissing(t *testing.T) {
	fake := &fakeAuthServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	b := &SessionBootstrap{UID: "u-1", ExchangeCode: "good-code"}
	_, err := NewHandoffClient(srv.URL).Complete(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, fake.minted, 1)
	assert.Equal(t, "u-1", fake.minted[0]["uid"])
	assert.Equal(t, []string{"fresh-token"}, fake.signIns)
}

func TestHandoff_FailuresAreNotRetried(t *testing.T) {
	fake := &fakeAuthServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	h := NewHandoffClient(srv.URL)

	_, err := h.Complete(context.Background(), &SessionBootstrap{UID: "u-1", ExchangeCode: "stale"})
	var herr *HandoffError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "remint", herr.Step)
	assert.Equal(t, http.StatusUnauthorized, herr.Status)
	assert.Equal(t, "handoff/invalid-exchange-code", herr.Code)
	assert.Len(t, fake.minted, 1)
	assert.Empty(t, fake.signIns)

	b := &SessionBootstrap{UID: "u-1", CustomToken: "used-token"}
	_, err = h.Complete(context.Background(), b)
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "sign-in", herr.Step)
	assert.Equal(t, "auth/invalid-custom-token", herr.Code)
	assert.Equal(t, "used-token", b.CustomToken)
	assert.Len(t, fake.signIns, 1)
}

func TestHandoff_NoBootstrap(t *testing.T) {
	h := NewHandoffClient("http://127.0.0.1:1")
	_, err := h.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBootstrap)

	_, err = h.Complete(context.Background(), &SessionBootstrap{})
	assert.ErrorIs(t, err, ErrNoBootstrap)
}
