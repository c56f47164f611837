package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/storyweaver/pkg/provider"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "CLAUDE_API_KEY", "KIMI_API_KEY", "ELEVENLABS_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Story.Provider != provider.Gemini {
		t.Errorf("story provider = %s", cfg.Story.Provider)
	}
	if cfg.TTS.Voice != "Zephyr" {
		t.Errorf("tts voice = %s", cfg.TTS.Voice)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written to disk: %v", err)
	}
}

func TestLoad_PartialFileMergesOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	partial := `{"story": {"model": "gemini-2.5-pro"}}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Story.Model != "gemini-2.5-pro" {
		t.Errorf("story model = %s, want the file's value", cfg.Story.Model)
	}
	// Everything the file omits keeps its default.
	if cfg.TTS.Model != "gemini-2.5-flash-preview-tts" {
		t.Errorf("tts model = %s, want default", cfg.TTS.Model)
	}
	if cfg.Narration.MaxTokens != 4096 {
		t.Errorf("narration max tokens = %d, want default", cfg.Narration.MaxTokens)
	}
}

func TestLoad_CorruptFileFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Story.Provider != provider.Gemini {
		t.Errorf("story provider = %s, want default", cfg.Story.Provider)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	file := `{"story": {"gemini_api_key": "from-file"}}`
	if err := os.WriteFile(path, []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Story.GeminiAPIKey != "from-env" {
		t.Errorf("gemini key = %s, want env value", cfg.Story.GeminiAPIKey)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	cfg := Defaults()
	cfg.Story.Model = "custom-model"
	cfg.TTS.Provider = provider.ElevenLabs
	cfg.TTS.ElevenLabsAPIKey = "xi-key"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Story.Model != "custom-model" || got.TTS.Provider != provider.ElevenLabs || got.TTS.ElevenLabsAPIKey != "xi-key" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestSetGetValue(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	if err := SetValue(path, "tts.provider", "edge"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	got, err := GetValue(path, "tts.provider")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if got != "edge" {
		t.Errorf("value = %v", got)
	}

	// Numbers parse as numbers.
	if err := SetValue(path, "narration.max_tokens", "2048"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	cfg, _ := Load(path)
	if cfg.Narration.MaxTokens != 2048 {
		t.Errorf("max tokens = %d", cfg.Narration.MaxTokens)
	}
}

func TestSetValue_DoesNotPersistEnvCredentials(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := Save(path, Defaults()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-secret-key")
	if err := SetValue(path, "log_level", "debug"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings file: %v", err)
	}
	if strings.Contains(string(raw), "env-secret-key") {
		t.Fatal("env credential written to the settings file by an unrelated edit")
	}

	// Env stays highest precedence in the loaded view.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %s, want debug", cfg.LogLevel)
	}
	if cfg.Story.GeminiAPIKey != "env-secret-key" {
		t.Errorf("gemini key = %q, want env value", cfg.Story.GeminiAPIKey)
	}
}

func TestSetValue_ExplicitCredentialStillPersists(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	if err := SetValue(path, "story.gemini_api_key", "typed-in-key"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings file: %v", err)
	}
	if !strings.Contains(string(raw), "typed-in-key") {
		t.Error("explicitly set credential missing from the settings file")
	}
}

func TestGetValue_UnknownKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.json")
	if _, err := GetValue(path, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestListValues_MasksSecrets(t *testing.T) {
	clearEnv(t)
	cfg := Defaults()
	cfg.Story.GeminiAPIKey = "AIzaSyExample1234"

	flat, err := ListValues(cfg, true)
	if err != nil {
		t.Fatalf("ListValues: %v", err)
	}
	got, _ := flat["story.gemini_api_key"].(string)
	if strings.Contains(got, "AIzaSyExample") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.HasPrefix(got, "***") || !strings.HasSuffix(got, "1234") {
		t.Errorf("mask format = %q", got)
	}
}
