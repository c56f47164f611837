package provider

import "sync"

// Registry maps provider IDs to adapter implementations, one per capability.
// Dispatch is always by ID variant through the registry, never by untyped
// string comparison: a selected provider without a registered adapter is an
// explicit lookup miss, not a silent fall-through.
type Registry struct {
	mu          sync.RWMutex
	story       map[ID]StoryProvider
	speech      map[ID]SpeechProvider
	translators map[ID]Translator
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		story:       make(map[ID]StoryProvider),
		speech:      make(map[ID]SpeechProvider),
		translators: make(map[ID]Translator),
	}
}

// RegisterStory adds a story adapter for the given provider ID.
func (r *Registry) RegisterStory(id ID, p StoryProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.story[id] = p
}

// RegisterSpeech adds a speech adapter for the given provider ID.
func (r *Registry) RegisterSpeech(id ID, p SpeechProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speech[id] = p
}

// RegisterTranslator adds a translation adapter for the given provider ID.
func (r *Registry) RegisterTranslator(id ID, t Translator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translators[id] = t
}

// Story returns the story adapter for id, or false if none is registered.
func (r *Registry) Story(id ID) (StoryProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.story[id]
	return p, ok
}

// Speech returns the speech adapter for id, or false if none is registered.
func (r *Registry) Speech(id ID) (SpeechProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.speech[id]
	return p, ok
}

// Translator returns the translation adapter for id, or false if none is
// registered.
func (r *Registry) Translator(id ID) (Translator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.translators[id]
	return t, ok
}
