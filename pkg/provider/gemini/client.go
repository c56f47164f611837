// Package gemini adapts the Google Gemini API to the provider contracts:
// search-grounded story generation, TTS narration, and translation.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/user/storyweaver/pkg/provider"
)

// DefaultVoice is the prebuilt voice used when the request does not name one.
const DefaultVoice = "Zephyr"

// Gemini TTS returns single-channel 16-bit linear PCM at this rate.
const (
	pcmSampleRate    = 24000
	pcmChannels      = 1
	pcmBitsPerSample = 16
)

const imageInstruction = `Analyze the provided image with strict accuracy. Describe only what is clearly visible. Do not invent details or make assumptions about ambiguous elements (e.g., if gender isn't clear, use "a person").

After describing the image, determine if it depicts a well-known person, place, or a significant event by using the search tool. Prioritize official and reputable sources.

- If it IS a significant event/person/place: Weave the factual context into a compelling narrative based on the image.
- If it is NOT a significant event/person/place: Focus primarily on a deep, creative interpretation of the visual details in the image. Use search results only for minor contextual details if necessary.

The final story should be vivid, creative, and engaging.`

const textInstruction = `Write a vivid, creative, and engaging story for the request below. If the request concerns a well-known person, place, or event, use the search tool to ground the story in facts from official and reputable sources; otherwise rely on imagination alone.`

const speechInstruction = "Read this story in a natural, human-like voice, with engaging and varied intonation suitable for an English learner. Avoid a robotic tone. Story: "

const translateInstruction = "Translate the following text into Simplified Chinese. Output only the translation, with no commentary:\n\n"

// Client implements the story, speech, and translation contracts against
// the Gemini API. It is stateless: the credential travels with each request,
// so a settings change never leaks into an in-flight cycle.
type Client struct{}

// New creates a Gemini adapter.
func New() *Client {
	return &Client{}
}

func (c *Client) newSDKClient(ctx context.Context, credential string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	})
}

// GenerateStory calls generateContent with the google search grounding tool
// enabled and returns the narrative plus ordered grounding sources.
func (c *Client) GenerateStory(ctx context.Context, req *provider.StoryRequest) (*provider.StoryResult, error) {
	cl, err := c.newSDKClient(ctx, req.Credential)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.Gemini, Op: "story", Err: err}
	}

	var parts []*genai.Part
	if len(req.ImageData) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.ImageMIME, Data: req.ImageData},
		})
	}
	parts = append(parts, &genai.Part{Text: buildStoryPrompt(req)})

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := cl.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.Gemini, Op: "story", Err: err}
	}

	story := resp.Text()
	if story == "" {
		return nil, &provider.ProviderError{
			Provider: provider.Gemini,
			Op:       "story",
			Raw:      "the API returned no text",
		}
	}

	return &provider.StoryResult{
		Story:   story,
		Sources: groundingSources(resp),
	}, nil
}

// buildStoryPrompt picks the image-grounded or text-only instruction and
// appends the user's custom requirements, which take priority.
func buildStoryPrompt(req *provider.StoryRequest) string {
	base := textInstruction
	if len(req.ImageData) > 0 {
		base = imageInstruction
	}
	if req.Prompt != "" {
		base += fmt.Sprintf("\n\n**User's Custom Requirements (PRIORITY):**\n%s", req.Prompt)
	}
	return base
}

// groundingSources extracts the grounding chunks in provider-returned order.
func groundingSources(resp *genai.GenerateContentResponse) []provider.Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []provider.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		sources = append(sources, provider.Source{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}

// GenerateSpeech calls generateContent with the AUDIO response modality and
// returns the PCM variant.
func (c *Client) GenerateSpeech(ctx context.Context, req *provider.SpeechRequest) (*provider.Audio, error) {
	cl, err := c.newSDKClient(ctx, req.Credential)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.Gemini, Op: "speech", Err: err}
	}

	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: speechInstruction + req.Text}},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := cl.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, &provider.ProviderError{Provider: provider.Gemini, Op: "speech", Err: err}
	}

	data := inlineAudio(resp)
	if len(data) == 0 {
		return nil, &provider.ProviderError{
			Provider: provider.Gemini,
			Op:       "speech",
			Raw:      "the API did not return any audio data",
		}
	}

	return &provider.Audio{
		Encoding:      provider.EncodingPCM,
		PCM:           data,
		SampleRate:    pcmSampleRate,
		Channels:      pcmChannels,
		BitsPerSample: pcmBitsPerSample,
	}, nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// Translate renders the text into Simplified Chinese.
func (c *Client) Translate(ctx context.Context, req *provider.TranslateRequest) (string, error) {
	cl, err := c.newSDKClient(ctx, req.Credential)
	if err != nil {
		return "", &provider.ProviderError{Provider: provider.Gemini, Op: "translate", Err: err}
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: translateInstruction + req.Text}},
	}}

	resp, err := cl.Models.GenerateContent(ctx, req.Model, contents, nil)
	if err != nil {
		return "", &provider.ProviderError{Provider: provider.Gemini, Op: "translate", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &provider.ProviderError{
			Provider: provider.Gemini,
			Op:       "translate",
			Raw:      "the API returned no translation",
		}
	}
	return text, nil
}

// ValidateStoryModel probes the story model with a minimal request. A nil
// error means the credential and model are usable.
func (c *Client) ValidateStoryModel(ctx context.Context, model, credential string) error {
	if credential == "" {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "API key is required"}
	}
	if model == "" {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "model name is required"}
	}

	cl, err := c.newSDKClient(ctx, credential)
	if err != nil {
		return &provider.ProviderError{Provider: provider.Gemini, Op: "validate", Err: err}
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "test"}}}}
	resp, err := cl.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 5,
	})
	if err != nil {
		return &provider.ProviderError{Provider: provider.Gemini, Op: "validate", Err: err}
	}
	if resp.Text() == "" {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "model call succeeded but returned no data"}
	}
	return nil
}

// ValidateSpeechModel probes the TTS model with a minimal audio request.
func (c *Client) ValidateSpeechModel(ctx context.Context, model, credential string) error {
	if credential == "" {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "API key is required"}
	}
	if model == "" {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "TTS model name is required"}
	}

	audio, err := c.GenerateSpeech(ctx, &provider.SpeechRequest{
		Text:       "test",
		Model:      model,
		Credential: credential,
	})
	if err != nil {
		return err
	}
	if len(audio.PCM) == 0 {
		return &provider.ConfigError{Provider: provider.Gemini, Msg: "model does not support audio output"}
	}
	return nil
}
