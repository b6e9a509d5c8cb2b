package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gagesampsonn/barbershop/internal/config"
)

func TestSendText(t *testing.T) {
	var got textPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "token", PhoneNumberID: "12345", BaseURL: srv.URL, APIVersion: "v21.0"})
	id, err := client.SendText(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "15551234567", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "bad", PhoneNumberID: "1", BaseURL: srv.URL})
	_, err := client.SendText(context.Background(), "1555", "hello")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 190, apiErr.Detail.Code)
}

func TestSendTextRequiresInput(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{PhoneNumberID: "1"})
	_, err := client.SendText(context.Background(), " ", "hello")
	assert.Error(t, err)
	_, err = client.SendText(context.Background(), "1555", "")
	assert.Error(t, err)
}
