package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSessionStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session-status", r.URL.Path)
		assert.Equal(t, "919876543210", r.URL.Query().Get("number"))
		json.NewEncoder(w).Encode(map[string]bool{"within_window": true})
	}))
	defer server.Close()

	client := NewChannelClient(server.URL)
	status, err := client.GetSessionStatus(context.Background(), "919876543210")
	require.NoError(t, err)
	assert.True(t, status.WithinWindow)
}

func TestGetSessionStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewChannelClient(server.URL)
	_, err := client.GetSessionStatus(context.Background(), "919876543210")
	assert.Error(t, err)
}

func TestSendTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-template", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "919876543210", body["recipient"])
		assert.Equal(t, "resume_conversation", body["template"])
		assert.Equal(t, "en", body["language"])
	}))
	defer server.Close()

	client := NewChannelClient(server.URL)
	err := client.SendTemplate(context.Background(), "919876543210", "resume_conversation", "en")
	assert.NoError(t, err)
}

func TestSendFreeform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-message", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello there", body["message"])
	}))
	defer server.Close()

	client := NewChannelClient(server.URL)
	err := client.SendFreeform(context.Background(), "919876543210", "hello there")
	assert.NoError(t, err)
}
