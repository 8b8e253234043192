package idprovider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/travel-community/internal/config"
	"github.com/spec-kit/travel-community/internal/domain"
	"github.com/spec-kit/travel-community/internal/idprovider"
)

func newClient(serverURL string) *idprovider.Client {
	return idprovider.NewClient(config.ProviderConfig{
		BaseURL:  serverURL,
		APIKey:   "key-123",
		ClientID: "client-1",
		AppURL:   "https://app.example",
	})
}

func TestClient_CreateSession(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/session/", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"session_id":"sess-9","url":"https://verify.example/sess-9"}`))
	}))
	defer server.Close()

	session, err := newClient(server.URL).CreateSession(context.Background(), "user-1", domain.SessionTypeFace)

	require.NoError(t, err)
	assert.Equal(t, "sess-9", session.ID)
	assert.Equal(t, "https://verify.example/sess-9", session.URL)
	assert.Equal(t, "user-1", got["customer_user_id"])
	assert.Equal(t, "https://app.example/webhooks/provider", got["callback_url"])
	assert.Equal(t, []any{"OCR", "FACE"}, got["verification_types"])
}

func TestClient_PrefersVerificationURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"s1","verification_url":"https://a","url":"https://b","session_url":"https://c"}`))
	}))
	defer server.Close()

	session, err := newClient(server.URL).CreateSession(context.Background(), "u", domain.SessionTypeID)

	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, "https://a", session.URL)
}

func TestClient_ErrorStatusCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"bad callback"}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CreateSession(context.Background(), "u", domain.SessionTypeBasic)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad callback")
}

func TestClient_MissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"session_id":"s1"}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CreateSession(context.Background(), "u", domain.SessionTypeBasic)

	assert.Error(t, err)
}

func TestClient_NotConfigured(t *testing.T) {
	client := idprovider.NewClient(config.ProviderConfig{BaseURL: "https://x"})

	_, err := client.CreateSession(context.Background(), "u", domain.SessionTypeBasic)

	assert.ErrorIs(t, err, idprovider.ErrNotConfigured)
}
