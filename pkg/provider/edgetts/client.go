// Package edgetts adapts a free Edge Read Aloud proxy to the provider
// speech contract. The service requires no credential and carries no SLA,
// so callers treat it as best-effort.
package edgetts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/storyweaver/pkg/provider"
)

const defaultEndpoint = "https://tts.travisvn.com/api/tts"

// DefaultVoice is used when the request does not name a voice.
const DefaultVoice = "en-US-AriaNeural"

// Responses shorter than this are treated as junk rather than audio.
const minAudioBytes = 100

// Config holds optional overrides for the Edge TTS client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client implements the provider.SpeechProvider interface for the Edge TTS
// proxy endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates an Edge TTS client. A nil config uses the public endpoint.
func New(config *Config) *Client {
	endpoint := defaultEndpoint
	timeout := 60 * time.Second
	if config != nil {
		if config.Endpoint != "" {
			endpoint = config.Endpoint
		}
		if config.Timeout > 0 {
			timeout = config.Timeout
		}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ttsRequest is the proxy's request body.
type ttsRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice"`
	Language string  `json:"language"`
	Speed    float64 `json:"speed"`
}

// GenerateSpeech synthesizes the text and returns the compressed audio
// variant. No credential is needed.
func (c *Client) GenerateSpeech(ctx context.Context, req *provider.SpeechRequest) (*provider.Audio, error) {
	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	body, err := json.Marshal(ttsRequest{
		Text:     req.Text,
		Voice:    voice,
		Language: "en-US",
		Speed:    1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.EdgeTTS, Op: "speech", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.ProviderError{
			Provider: provider.EdgeTTS,
			Op:       "speech",
			Raw:      fmt.Sprintf("Edge TTS service responded with status: %d", resp.StatusCode),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if len(audio) < minAudioBytes {
		return nil, &provider.ProviderError{
			Provider: provider.EdgeTTS,
			Op:       "speech",
			Raw:      "received invalid audio data from Edge TTS service",
		}
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}

	return &provider.Audio{
		Encoding:   provider.EncodingCompressed,
		Compressed: audio,
		MIMEType:   mime,
	}, nil
}

// Validate probes the service with a short synthesis call.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.GenerateSpeech(ctx, &provider.SpeechRequest{Text: "Test"})
	return err
}
