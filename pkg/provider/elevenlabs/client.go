// Package elevenlabs adapts the ElevenLabs text-to-speech API to the
// provider speech contract.
package elevenlabs

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

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// DefaultModel is the multilingual model the adapter requests.
const DefaultModel = "eleven_multilingual_v2"

// Config holds optional overrides for the ElevenLabs client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements the provider.SpeechProvider interface for ElevenLabs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an ElevenLabs client. A nil config uses production defaults.
func New(config *Config) *Client {
	baseURL := defaultBaseURL
	timeout := 60 * time.Second
	if config != nil {
		if config.BaseURL != "" {
			baseURL = config.BaseURL
		}
		if config.Timeout > 0 {
			timeout = config.Timeout
		}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ttsRequest is the ElevenLabs text-to-speech request body.
type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// errorResponse is the ElevenLabs error body.
type errorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// GenerateSpeech synthesizes the text with the configured voice and returns
// the compressed audio variant. The API key and voice ID are both required.
func (c *Client) GenerateSpeech(ctx context.Context, req *provider.SpeechRequest) (*provider.Audio, error) {
	if req.Credential == "" || req.Voice == "" {
		return nil, &provider.ConfigError{
			Provider: provider.ElevenLabs,
			Msg:      "API key and voice ID are required",
		}
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	body, err := json.Marshal(ttsRequest{
		Text:    req.Text,
		ModelID: model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/text-to-speech/" + req.Voice
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", req.Credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.ElevenLabs, Op: "speech", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.ProviderError{
			Provider: provider.ElevenLabs,
			Op:       "speech",
			Raw:      fmt.Sprintf("status %d: %s", resp.StatusCode, errorDetail(respBody, resp.Status)),
		}
	}

	if len(respBody) == 0 {
		return nil, &provider.ProviderError{
			Provider: provider.ElevenLabs,
			Op:       "speech",
			Raw:      "the API returned no audio data",
		}
	}

	return &provider.Audio{
		Encoding:   provider.EncodingCompressed,
		Compressed: respBody,
		MIMEType:   "audio/mpeg",
	}, nil
}

// errorDetail extracts the detail message from an error body, falling back
// to the HTTP status text.
func errorDetail(body []byte, fallback string) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail.Message != "" {
		return er.Detail.Message
	}
	return fallback
}

// VerifyVoice checks that the voice ID exists and the key is authorized.
// Returns the voice's display name on success.
func (c *Client) VerifyVoice(ctx context.Context, credential, voiceID string) (string, error) {
	if credential == "" {
		return "", &provider.ConfigError{Provider: provider.ElevenLabs, Msg: "API key is required"}
	}
	if voiceID == "" {
		return "", &provider.ConfigError{Provider: provider.ElevenLabs, Msg: "voice ID is required"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices/"+voiceID, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("xi-api-key", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &provider.ProviderError{Provider: provider.ElevenLabs, Op: "validate", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &provider.ProviderError{
			Provider: provider.ElevenLabs,
			Op:       "validate",
			Raw:      fmt.Sprintf("status %d: %s", resp.StatusCode, errorDetail(body, resp.Status)),
		}
	}

	var voice struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &voice); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return voice.Name, nil
}
