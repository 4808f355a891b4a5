package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFloodSummary(t *testing.T) {
	var got DiscordMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", srv.URL)

	err := SendFloodSummary(context.Background(), FloodSummary{
		RunID: "r1", Region: "kosi", PreDate: "2024-07-20", PostDate: "2024-08-13",
		PreThreshold: -15.25, PostThreshold: -16, FloodedPixels: 12, FloodedKm2: 0.0012,
	})
	require.NoError(t, err)
	require.Len(t, got.Embeds, 1)
	require.Len(t, got.Embeds[0].Fields, 3)
	assert.Equal(t, "-15.25 dB", got.Embeds[0].Fields[0].Value)
	assert.Contains(t, got.Embeds[0].Description, "kosi")
}

func TestSend_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", srv.URL)
	assert.Error(t, SendDiscordErrorNotification("boom"))

	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", "")
	assert.NoError(t, SendDiscordErrorNotification("no webhook configured"))
}
