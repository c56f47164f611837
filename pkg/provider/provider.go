package provider

import "context"

// StoryProvider defines the interface for narrative generation backends.
// Implementations handle protocol-specific details such as request formatting,
// authentication, and response parsing.
type StoryProvider interface {
	// GenerateStory produces a narrative for the given prompt and optional
	// image, along with any grounding sources the backend consulted.
	GenerateStory(ctx context.Context, req *StoryRequest) (*StoryResult, error)
}

// SpeechProvider defines the interface for text-to-speech backends.
type SpeechProvider interface {
	// GenerateSpeech synthesizes narration for the given text. Exactly one
	// Audio variant is populated, matching the backend's native encoding.
	GenerateSpeech(ctx context.Context, req *SpeechRequest) (*Audio, error)
}

// Translator defines the interface for translation backends. Translation
// is strictly additive: callers keep the original text when it fails.
type Translator interface {
	Translate(ctx context.Context, req *TranslateRequest) (string, error)
}

// ID identifies a third-party provider behind one of the adapter contracts.
type ID string

const (
	Gemini     ID = "gemini"
	OpenAI     ID = "openai"
	Claude     ID = "claude"
	Kimi       ID = "kimi"
	ElevenLabs ID = "elevenlabs"
	EdgeTTS    ID = "edge"
)

// StoryIDs enumerates the selectable story providers, implemented or not.
func StoryIDs() []ID {
	return []ID{Gemini, OpenAI, Claude, Kimi}
}

// SpeechIDs enumerates the selectable speech providers, implemented or not.
func SpeechIDs() []ID {
	return []ID{Gemini, ElevenLabs, OpenAI, EdgeTTS}
}

// Capability names one of the adapter contracts a provider can implement.
type Capability string

const (
	CapabilityStory     Capability = "story"
	CapabilitySpeech    Capability = "speech"
	CapabilityTranslate Capability = "translate"
)
