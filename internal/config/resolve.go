package config

import (
	"fmt"

	"github.com/user/storyweaver/pkg/provider"
)

// Resolved is the active provider choice for one capability: which adapter
// to invoke, with which model, voice, and credential.
type Resolved struct {
	Provider   provider.ID
	Model      string
	Voice      string
	Credential string
}

// Resolve selects the active provider and its dedicated credential for the
// given capability. The provider-to-credential mapping is fixed: a provider
// never falls back to another provider's key. Resolution succeeds for every
// enumerated provider, implemented or not; rejecting unimplemented
// providers is the pipeline's job, so the settings surface stays usable.
func Resolve(cfg *Config, capability provider.Capability) (Resolved, error) {
	switch capability {
	case provider.CapabilityStory, provider.CapabilityTranslate:
		// Translation rides on the story provider's credential.
		cred, err := storyCredential(cfg, cfg.Story.Provider)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{
			Provider:   cfg.Story.Provider,
			Model:      cfg.Story.Model,
			Credential: cred,
		}, nil

	case provider.CapabilitySpeech:
		r := Resolved{Provider: cfg.TTS.Provider, Model: cfg.TTS.Model}
		switch cfg.TTS.Provider {
		case provider.Gemini:
			r.Credential = cfg.Story.GeminiAPIKey
			r.Voice = cfg.TTS.Voice
		case provider.ElevenLabs:
			r.Credential = cfg.TTS.ElevenLabsAPIKey
			r.Voice = cfg.TTS.ElevenLabsVoiceID
			r.Model = "" // the adapter picks its fixed multilingual model
		case provider.EdgeTTS:
			r.Voice = cfg.TTS.EdgeVoice
		case provider.OpenAI:
			r.Credential = cfg.Story.OpenAIAPIKey
		default:
			return Resolved{}, fmt.Errorf("unknown speech provider: %s", cfg.TTS.Provider)
		}
		return r, nil

	default:
		return Resolved{}, fmt.Errorf("unknown capability: %s", capability)
	}
}

func storyCredential(cfg *Config, id provider.ID) (string, error) {
	switch id {
	case provider.Gemini:
		return cfg.Story.GeminiAPIKey, nil
	case provider.OpenAI:
		return cfg.Story.OpenAIAPIKey, nil
	case provider.Claude:
		return cfg.Story.ClaudeAPIKey, nil
	case provider.Kimi:
		return cfg.Story.KimiAPIKey, nil
	default:
		return "", fmt.Errorf("unknown story provider: %s", id)
	}
}
