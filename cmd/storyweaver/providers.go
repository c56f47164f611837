package main

import (
	"github.com/user/storyweaver/pkg/provider"
	"github.com/user/storyweaver/pkg/provider/edgetts"
	"github.com/user/storyweaver/pkg/provider/elevenlabs"
	"github.com/user/storyweaver/pkg/provider/gemini"
)

// buildRegistry wires up every implemented adapter. Providers that are
// enumerated in settings but absent here are rejected by the pipeline with
// a configuration error at generation time.
func buildRegistry() *provider.Registry {
	reg := provider.NewRegistry()

	g := gemini.New()
	reg.RegisterStory(provider.Gemini, g)
	reg.RegisterSpeech(provider.Gemini, g)
	reg.RegisterTranslator(provider.Gemini, g)

	reg.RegisterSpeech(provider.ElevenLabs, elevenlabs.New(nil))
	reg.RegisterSpeech(provider.EdgeTTS, edgetts.New(nil))

	return reg
}
