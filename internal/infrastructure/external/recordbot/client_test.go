package recordbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartBot_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bot" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["meeting_url"] != "https://meet.google.com/abc" {
			t.Fatalf("unexpected meeting url %q", payload["meeting_url"])
		}
		json.NewEncoder(w).Encode(BotInfo{ID: "bot-42", Status: "joining"})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	botID, err := client.StartBot(context.Background(), "https://meet.google.com/abc")
	require.NoError(t, err)
	assert.Equal(t, "bot-42", botID)
}

func TestStartBot_RejectionCarriesStatusAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "meeting is locked", http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	_, err := client.StartBot(context.Background(), "https://meet.google.com/abc")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnprocessableEntity, perr.StatusCode)
	assert.Contains(t, perr.Body, "meeting is locked")
}

func TestStartBot_EmptyBotIDRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(BotInfo{Status: "joining"})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	_, err := client.StartBot(context.Background(), "https://meet.google.com/abc")
	assert.Error(t, err)
}

func TestGetBot_ParsesRecordingsShortcut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot/bot-42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(BotInfo{
			ID:     "bot-42",
			Status: "done",
			Recordings: []Recording{
				{ID: "rec-1", Shortcut: &TranscriptShortcut{Status: "done", DownloadURL: "https://p/t.json"}},
			},
		})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	info, err := client.GetBot(context.Background(), "bot-42")
	require.NoError(t, err)
	require.Len(t, info.Recordings, 1)
	require.NotNil(t, info.Recordings[0].Shortcut)
	assert.Equal(t, "https://p/t.json", info.Recordings[0].Shortcut.DownloadURL)
}

func TestGetTranscript_ReturnsRawBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot/bot-42/transcript" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"speaker":"Alice","words":[{"text":"hello"}]}]`))
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	raw, err := client.GetTranscript(context.Background(), "bot-42")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Alice")
}

func TestStopBot_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bot not found", http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "test-key")
	err := client.StopBot(context.Background(), "ghost")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusNotFound, perr.StatusCode)
}
