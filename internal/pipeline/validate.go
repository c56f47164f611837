package pipeline

import (
	"context"
	"fmt"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/pkg/provider"
)

// Optional probe capabilities. Adapters that can cheaply verify their
// configuration implement one of these; the others report that probing is
// unavailable rather than issuing a full generation.
type storyModelValidator interface {
	ValidateStoryModel(ctx context.Context, model, credential string) error
}

type speechModelValidator interface {
	ValidateSpeechModel(ctx context.Context, model, credential string) error
}

type voiceVerifier interface {
	VerifyVoice(ctx context.Context, credential, voiceID string) (string, error)
}

type endpointValidator interface {
	Validate(ctx context.Context) error
}

// ValidateStory probes the configured story provider with a minimal request
// and returns a human-readable confirmation. Probes are not retried: the
// user is waiting on an explicit button press.
func (p *Pipeline) ValidateStory(ctx context.Context) (string, error) {
	res, err := config.Resolve(p.settings(), provider.CapabilityStory)
	if err != nil {
		return "", err
	}
	adapter, ok := p.providers.Story(res.Provider)
	if !ok {
		return "", &provider.ConfigError{Provider: res.Provider, Msg: "story provider is not yet implemented"}
	}
	v, ok := adapter.(storyModelValidator)
	if !ok {
		return "", &provider.ConfigError{Provider: res.Provider, Msg: "validation is not supported for this provider"}
	}
	if err := v.ValidateStoryModel(ctx, res.Model, res.Credential); err != nil {
		return "", err
	}
	return fmt.Sprintf("Model %q is reachable and responding.", res.Model), nil
}

// ValidateSpeech probes the configured speech provider: a tiny synthesis
// for Gemini, a voice lookup for ElevenLabs, an endpoint check for Edge.
func (p *Pipeline) ValidateSpeech(ctx context.Context) (string, error) {
	res, err := config.Resolve(p.settings(), provider.CapabilitySpeech)
	if err != nil {
		return "", err
	}
	adapter, ok := p.providers.Speech(res.Provider)
	if !ok {
		return "", &provider.ConfigError{Provider: res.Provider, Msg: "speech provider is not yet implemented"}
	}

	switch v := adapter.(type) {
	case speechModelValidator:
		if err := v.ValidateSpeechModel(ctx, res.Model, res.Credential); err != nil {
			return "", err
		}
		return fmt.Sprintf("Speech model %q is reachable and responding.", res.Model), nil
	case voiceVerifier:
		name, err := v.VerifyVoice(ctx, res.Credential, res.Voice)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Voice verified: %s.", name), nil
	case endpointValidator:
		if err := v.Validate(ctx); err != nil {
			return "", err
		}
		return "The narration endpoint is reachable.", nil
	default:
		return "", &provider.ConfigError{Provider: res.Provider, Msg: "validation is not supported for this provider"}
	}
}
