package recordbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TranscriptShortcut is a provider-supplied pointer to a derived transcript
// artifact of a recording
type TranscriptShortcut struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
}

// Recording is one recording attached to a bot
type Recording struct {
	ID       string              `json:"id"`
	Shortcut *TranscriptShortcut `json:"transcript_shortcut,omitempty"`
}

// BotInfo describes the provider-side state of a recording bot
type BotInfo struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	MeetingURL string      `json:"meeting_url"`
	Recordings []Recording `json:"recordings,omitempty"`
}

// ProviderError is returned when the provider rejects a request
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("recorder provider returned status %d: %s", e.StatusCode, e.Body)
}

// Client is the contract for the recording bot provider
type Client interface {
	StartBot(ctx context.Context, meetingURL string) (string, error)
	StopBot(ctx context.Context, botID string) error
	GetBot(ctx context.Context, botID string) (*BotInfo, error)
	GetTranscript(ctx context.Context, botID string) ([]byte, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient talks to the real recording bot provider
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a provider client
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// StartBot dispatches a bot to the meeting and returns its provider ID
func (c *HTTPClient) StartBot(ctx context.Context, meetingURL string) (string, error) {
	body, err := json.Marshal(map[string]string{"meeting_url": meetingURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/bot", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", readProviderError(resp)
	}

	var info BotInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode bot response: %w", err)
	}
	if info.ID == "" {
		return "", fmt.Errorf("provider returned empty bot id")
	}
	return info.ID, nil
}

// StopBot removes the bot from the meeting
func (c *HTTPClient) StopBot(ctx context.Context, botID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/bot/"+botID, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readProviderError(resp)
	}
	return nil
}

// GetBot fetches the current provider state of the bot
func (c *HTTPClient) GetBot(ctx context.Context, botID string) (*BotInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/bot/"+botID, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readProviderError(resp)
	}

	var info BotInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode bot response: %w", err)
	}
	return &info, nil
}

// GetTranscript fetches the transcript recorded by the bot
func (c *HTTPClient) GetTranscript(ctx context.Context, botID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/bot/"+botID+"/transcript", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readProviderError(resp)
	}

	return io.ReadAll(resp.Body)
}

// Download fetches a provider-signed transcript URL
func (c *HTTPClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readProviderError(resp)
	}

	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func readProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
}
