package pipeline

import (
	"errors"
	"testing"

	"github.com/user/storyweaver/pkg/provider"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
	}{
		{"http 503", errors.New("server returned 503"), KindOverload, true},
		{"unavailable status", errors.New(`{"error":{"status":"UNAVAILABLE"}}`), KindOverload, true},
		{"overloaded text", errors.New("the model is overloaded, try again"), KindOverload, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), KindNetwork, true},
		{"dns failure", errors.New("lookup api.example.com: no such host"), KindNetwork, true},
		{"timeout", errors.New("request timeout after 30s"), KindNetwork, true},
		{"bad api key", errors.New("API key not valid. Please pass a valid API key."), KindAuth, false},
		{"http 401", errors.New("server returned 401 Unauthorized"), KindAuth, false},
		{"invalid_api_key code", errors.New(`{"code":"invalid_api_key"}`), KindAuth, false},
		{"model missing", errors.New("models/gemini-1.0 is not found for API version v1beta"), KindModel, false},
		{"http 404", errors.New("server returned 404"), KindModel, false},
		{"http 429", errors.New("server returned 429 Too Many Requests"), KindConfig, true},
		{"quota", errors.New("RESOURCE_EXHAUSTED: quota exceeded for quota metric"), KindConfig, true},
		{"modality", errors.New("the requested response modality is not supported by this model"), KindConfig, false},
		{"something else", errors.New("internal parsing oddity"), KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(tt.err)
			if cls.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", cls.Kind, tt.kind)
			}
			if cls.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", cls.Retryable, tt.retryable)
			}
			if cls.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

// "model overloaded" contains markers from both the overload and the model
// buckets; overload must win or a transient failure becomes permanent.
func TestClassify_OverloadBeatsModel(t *testing.T) {
	cls := Classify(errors.New("the model is overloaded. 503 Service Unavailable"))
	if cls.Kind != KindOverload {
		t.Fatalf("kind = %s, want %s", cls.Kind, KindOverload)
	}
	if !cls.Retryable {
		t.Fatal("overload must be retryable")
	}
}

func TestClassify_ConfigError(t *testing.T) {
	err := &provider.ConfigError{Provider: provider.ElevenLabs, Msg: "API key not configured"}
	cls := Classify(err)
	if cls.Kind != KindConfig {
		t.Errorf("kind = %s, want %s", cls.Kind, KindConfig)
	}
	if cls.Retryable {
		t.Error("missing configuration must not be retried")
	}
}

func TestClassify_ProviderErrorRawPayload(t *testing.T) {
	// Raw upstream payloads surface through the error string, so markers
	// inside the payload must still classify.
	err := &provider.ProviderError{
		Provider: provider.Gemini,
		Op:       "generate story",
		Raw:      `{"error":{"code":429,"message":"Resource has been exhausted"}}`,
	}
	cls := Classify(err)
	if cls.Kind != KindConfig {
		t.Errorf("kind = %s, want %s", cls.Kind, KindConfig)
	}
	if !cls.Retryable {
		t.Error("rate limiting should be retryable")
	}
}
