package pipeline

import (
	"errors"
	"strings"

	"github.com/user/storyweaver/pkg/provider"
)

// Kind buckets a provider failure so the frontend and the retry policy can
// react uniformly regardless of which backend produced it.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindAuth     Kind = "auth"
	KindModel    Kind = "model"
	KindConfig   Kind = "config"
	KindOverload Kind = "overload"
	KindUnknown  Kind = "unknown"
)

// Classification is the normalized verdict for a failure.
type Classification struct {
	Kind      Kind
	Retryable bool
	Message   string
}

var (
	overloadMarkers  = []string{"503", "unavailable", "overloaded"}
	networkMarkers   = []string{"fetch", "network", "enotfound", "econnrefused", "connection refused", "connection reset", "timeout", "no such host"}
	authMarkers      = []string{"api key", "401", "unauthorized", "invalid_api_key"}
	modelMarkers     = []string{"404", "not found", "does not exist"}
	rateLimitMarkers = []string{"429", "rate limit", "quota", "resource_exhausted"}
	modalityMarkers  = []string{"modality", "not supported", "unsupported"}
)

// Classify inspects an error's text and assigns it a Kind. Matching is
// case-insensitive substring matching over the full error string, which for
// provider errors includes the raw response payload. Overload markers are
// checked before model markers: "model overloaded" responses contain both.
//
// A ConfigError short-circuits to KindConfig with its own message, since it
// describes missing local configuration rather than a backend failure.
func Classify(err error) Classification {
	var cfgErr *provider.ConfigError
	if errors.As(err, &cfgErr) {
		return Classification{Kind: KindConfig, Retryable: false, Message: cfgErr.Error()}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, overloadMarkers):
		return Classification{
			Kind:      KindOverload,
			Retryable: true,
			Message:   "The service is overloaded right now. Please try again in a moment.",
		}
	case containsAny(msg, networkMarkers):
		return Classification{
			Kind:      KindNetwork,
			Retryable: true,
			Message:   "Network connection failed. Check your connection, firewall, or proxy settings.",
		}
	case containsAny(msg, authMarkers):
		return Classification{
			Kind:      KindAuth,
			Retryable: false,
			Message:   "The API key is invalid or unauthorized. Check the key in settings.",
		}
	case containsAny(msg, modelMarkers):
		return Classification{
			Kind:      KindModel,
			Retryable: false,
			Message:   "The requested model does not exist or is unavailable. Check the model name in settings.",
		}
	case containsAny(msg, rateLimitMarkers):
		return Classification{
			Kind:      KindConfig,
			Retryable: true,
			Message:   "API quota exhausted or rate limited. Wait a while or check your plan's quota.",
		}
	case containsAny(msg, modalityMarkers):
		return Classification{
			Kind:      KindConfig,
			Retryable: false,
			Message:   "The model does not support the requested output. Pick a model with the right capability.",
		}
	default:
		return Classification{
			Kind:      KindUnknown,
			Retryable: false,
			Message:   "Generation failed: " + err.Error(),
		}
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
