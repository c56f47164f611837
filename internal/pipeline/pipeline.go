// Package pipeline orchestrates one generation cycle at a time: story
// generation, history persistence, and audio narration, with unified error
// classification and retry across all provider backends.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/storyweaver/internal/config"
	"github.com/user/storyweaver/internal/narrate"
	"github.com/user/storyweaver/internal/types"
	"github.com/user/storyweaver/pkg/provider"
)

// State is the pipeline's current phase. Story and audio are sequential,
// never concurrent, so a single state value describes the whole pipeline.
type State string

const (
	StateIdle            State = "idle"
	StateGeneratingStory State = "generating_story"
	StateGeneratingAudio State = "generating_audio"
)

// ErrBusy is returned when a generation request arrives while a cycle is
// already running. The running cycle is unaffected.
var ErrBusy = errors.New("a generation cycle is already running")

// ValidationError reports rejected input. It never occupies the busy slot.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Input is the user-supplied portion of a generation request. ImageRef is
// an opaque handle to the stored image, recorded in history alongside the
// story; the pipeline never interprets it.
type Input struct {
	Prompt    string
	ImageData []byte
	ImageMIME string
	ImageRef  string

	// SkipAudio ends the cycle after the story phase.
	SkipAudio bool
}

// Snapshot is the externally visible pipeline state. Audio results and
// audio errors live alongside the story rather than replacing it: a failed
// narration never discards a generated story.
type Snapshot struct {
	State     State             `json:"state"`
	CycleID   types.CycleID     `json:"cycle_id,omitempty"`
	Prompt    string            `json:"prompt,omitempty"`
	ImageRef  string            `json:"image_ref,omitempty"`
	Story     string            `json:"story,omitempty"`
	Sources   []provider.Source `json:"sources,omitempty"`
	Audio     *provider.Audio   `json:"audio,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind Kind              `json:"error_kind,omitempty"`

	AudioFailed bool   `json:"audio_failed"`
	AudioError  string `json:"audio_error,omitempty"`
}

// Pipeline runs generation cycles. A weighted semaphore of capacity one
// admits a single cycle; requests arriving mid-cycle get ErrBusy instead
// of queueing.
type Pipeline struct {
	providers *provider.Registry
	history   types.HistoryStore
	settings  func() *config.Config
	clamp     *narrate.Clamp
	retry     *RetryPolicy

	slot *semaphore.Weighted

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a Pipeline. settings is re-read at the start of every cycle,
// so saved configuration changes apply to the next generation without a
// restart. A nil retry policy uses DefaultRetryPolicy; a nil clamp skips
// narration length limiting.
func New(providers *provider.Registry, history types.HistoryStore, settings func() *config.Config, clamp *narrate.Clamp, retry *RetryPolicy) *Pipeline {
	if retry == nil {
		retry = DefaultRetryPolicy()
	}
	return &Pipeline{
		providers: providers,
		history:   history,
		settings:  settings,
		clamp:     clamp,
		retry:     retry,
		slot:      semaphore.NewWeighted(1),
		snap:      Snapshot{State: StateIdle},
	}
}

// Snapshot returns a copy of the current pipeline state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneSnapshot(p.snap)
}

// Generate runs one full cycle: story, history append, then narration.
// It blocks until the cycle completes and returns the final snapshot.
// Provider failures are recorded in the snapshot, not returned as errors;
// the error return covers only rejected input and the busy guard.
func (p *Pipeline) Generate(ctx context.Context, in Input) (Snapshot, error) {
	if len(in.ImageData) == 0 && in.Prompt == "" {
		return p.Snapshot(), &ValidationError{Msg: "Upload an image or describe a scene first."}
	}
	if !p.slot.TryAcquire(1) {
		return p.Snapshot(), ErrBusy
	}
	defer p.slot.Release(1)

	cycleID := types.NewCycleID()
	cfg := p.settings()

	// A new cycle clears all results from the previous one.
	p.setSnap(Snapshot{
		State:    StateGeneratingStory,
		CycleID:  cycleID,
		Prompt:   in.Prompt,
		ImageRef: in.ImageRef,
	})
	slog.Info("generation cycle started",
		"cycle_id", cycleID,
		"has_image", len(in.ImageData) > 0,
		"prompt_len", len(in.Prompt))

	result, err := p.generateStory(ctx, cfg, in)
	if err != nil {
		cls := Classify(err)
		slog.Error("story generation failed", "cycle_id", cycleID, "kind", cls.Kind, "error", err)
		p.updateSnap(func(s *Snapshot) {
			s.State = StateIdle
			s.Error = storyFailureMessage(cls)
			s.ErrorKind = cls.Kind
		})
		return p.Snapshot(), nil
	}

	p.updateSnap(func(s *Snapshot) {
		s.Story = result.Story
		s.Sources = result.Sources
	})
	p.appendHistory(in, result)

	if in.SkipAudio {
		p.updateSnap(func(s *Snapshot) { s.State = StateIdle })
		return p.Snapshot(), nil
	}
	p.runAudio(ctx, cfg, result.Story)
	return p.Snapshot(), nil
}

// RegenerateAudio re-runs only the narration phase for the snapshot's
// current story, leaving story, sources, and history untouched.
func (p *Pipeline) RegenerateAudio(ctx context.Context) (Snapshot, error) {
	if !p.slot.TryAcquire(1) {
		return p.Snapshot(), ErrBusy
	}
	defer p.slot.Release(1)

	// Read the story while holding the slot, so a cycle that finished just
	// before acquisition cannot leave stale text to narrate.
	story := p.Snapshot().Story
	if story == "" {
		return p.Snapshot(), &ValidationError{Msg: "There is no story to narrate yet."}
	}

	p.runAudio(ctx, p.settings(), story)
	return p.Snapshot(), nil
}

// Translate renders text in the story provider's translation target
// language. It is additive and does not touch the snapshot: callers keep
// the original text on failure.
func (p *Pipeline) Translate(ctx context.Context, text string) (string, error) {
	cfg := p.settings()
	res, err := config.Resolve(cfg, provider.CapabilityTranslate)
	if err != nil {
		return "", err
	}
	tr, ok := p.providers.Translator(res.Provider)
	if !ok {
		return "", &provider.ConfigError{Provider: res.Provider, Msg: "translation is not supported for this provider"}
	}
	return executeFor(p.retry, "translate", func() (string, error) {
		return tr.Translate(ctx, &provider.TranslateRequest{
			Text:       text,
			Model:      res.Model,
			Credential: res.Credential,
		})
	})
}

// LoadEntry restores a past generation into the snapshot so it can be
// re-read or re-narrated. Rejected while a cycle is running.
func (p *Pipeline) LoadEntry(entry *types.HistoryEntry) error {
	if !p.slot.TryAcquire(1) {
		return ErrBusy
	}
	defer p.slot.Release(1)

	e := entry.Clone()
	p.setSnap(Snapshot{
		State:    StateIdle,
		Prompt:   e.Prompt,
		ImageRef: e.ImageRef,
		Story:    e.Story,
		Sources:  e.Sources,
	})
	return nil
}

func (p *Pipeline) generateStory(ctx context.Context, cfg *config.Config, in Input) (*provider.StoryResult, error) {
	res, err := config.Resolve(cfg, provider.CapabilityStory)
	if err != nil {
		return nil, err
	}
	adapter, ok := p.providers.Story(res.Provider)
	if !ok {
		return nil, &provider.ConfigError{Provider: res.Provider, Msg: "story provider is not yet implemented"}
	}
	req := &provider.StoryRequest{
		Prompt:     in.Prompt,
		ImageData:  in.ImageData,
		ImageMIME:  in.ImageMIME,
		Model:      res.Model,
		Credential: res.Credential,
	}
	return executeFor(p.retry, "generate_story", func() (*provider.StoryResult, error) {
		return adapter.GenerateStory(ctx, req)
	})
}

// appendHistory records a completed story. Entries without an image are
// not recorded; history is a gallery of illustrated stories. A store
// failure is logged but never fails the cycle.
func (p *Pipeline) appendHistory(in Input, result *provider.StoryResult) {
	if in.ImageRef == "" || result.Story == "" {
		return
	}
	entry := &types.HistoryEntry{
		ID:        types.NewEntryID(),
		Story:     result.Story,
		ImageRef:  in.ImageRef,
		Prompt:    in.Prompt,
		Timestamp: time.Now(),
		Sources:   result.Sources,
	}
	if err := p.history.Append(entry); err != nil {
		slog.Warn("failed to persist history entry", "entry_id", entry.ID, "error", err)
	}
}

// runAudio executes the narration phase. The caller must hold the busy
// slot. Failures set AudioFailed and AudioError without touching the story.
func (p *Pipeline) runAudio(ctx context.Context, cfg *config.Config, story string) {
	p.updateSnap(func(s *Snapshot) {
		s.State = StateGeneratingAudio
		s.Audio = nil
		s.AudioFailed = false
		s.AudioError = ""
	})
	defer p.updateSnap(func(s *Snapshot) { s.State = StateIdle })

	audio, err := p.synthesize(ctx, cfg, story)
	if err != nil {
		cls := Classify(err)
		slog.Error("audio generation failed", "kind", cls.Kind, "error", err)
		p.updateSnap(func(s *Snapshot) {
			s.AudioFailed = true
			s.AudioError = audioFailureMessage(cls)
		})
		return
	}
	p.updateSnap(func(s *Snapshot) { s.Audio = audio })
}

func (p *Pipeline) synthesize(ctx context.Context, cfg *config.Config, story string) (*provider.Audio, error) {
	res, err := config.Resolve(cfg, provider.CapabilitySpeech)
	if err != nil {
		return nil, err
	}
	adapter, ok := p.providers.Speech(res.Provider)
	if !ok {
		return nil, &provider.ConfigError{Provider: res.Provider, Msg: "speech provider is not yet implemented"}
	}

	text := story
	if p.clamp != nil {
		text = p.clamp.Trim(story)
		if len(text) < len(story) {
			slog.Info("narration text clamped", "original_len", len(story), "clamped_len", len(text))
		}
	}

	req := &provider.SpeechRequest{
		Text:       text,
		Model:      res.Model,
		Voice:      res.Voice,
		Credential: res.Credential,
	}
	return executeFor(p.retry, "generate_speech", func() (*provider.Audio, error) {
		return adapter.GenerateSpeech(ctx, req)
	})
}

func (p *Pipeline) setSnap(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = s
}

func (p *Pipeline) updateSnap(fn func(*Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.snap)
}

func cloneSnapshot(s Snapshot) Snapshot {
	out := s
	if s.Sources != nil {
		out.Sources = make([]provider.Source, len(s.Sources))
		copy(out.Sources, s.Sources)
	}
	return out
}

func storyFailureMessage(cls Classification) string {
	switch cls.Kind {
	case KindOverload:
		return fmt.Sprintf("⚠️ %s Automatic retries did not succeed.", cls.Message)
	case KindAuth:
		return "🔑 " + cls.Message
	case KindModel:
		return "🤖 " + cls.Message
	case KindNetwork:
		return "🌐 " + cls.Message
	case KindConfig:
		return "⚙️ " + cls.Message
	default:
		return "❌ " + cls.Message
	}
}

func audioFailureMessage(cls Classification) string {
	if cls.Kind == KindOverload {
		return "⚠️ The narration service is overloaded and automatic retries did not succeed. The story was generated; you can regenerate the audio later."
	}
	return fmt.Sprintf("🔊 Audio generation failed: %s The story was generated; you can regenerate the audio manually.", cls.Message)
}
