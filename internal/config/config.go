package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/storyweaver/pkg/provider"
)

// Config is the persisted settings blob. Credential and model fields are
// independent per provider: switching provider never reuses another
// provider's credential.
type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	HTTP     struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
	Story struct {
		Provider     provider.ID `json:"provider"`
		Model        string      `json:"model"`
		GeminiAPIKey string      `json:"gemini_api_key"`
		OpenAIAPIKey string      `json:"openai_api_key"`
		ClaudeAPIKey string      `json:"claude_api_key"`
		KimiAPIKey   string      `json:"kimi_api_key"`
	} `json:"story"`
	TTS struct {
		Provider          provider.ID `json:"provider"`
		Model             string      `json:"model"`
		Voice             string      `json:"voice"`
		ElevenLabsAPIKey  string      `json:"elevenlabs_api_key"`
		ElevenLabsVoiceID string      `json:"elevenlabs_voice_id"`
		EdgeVoice         string      `json:"edge_voice"`
	} `json:"tts"`
	Narration struct {
		MaxTokens int `json:"max_tokens"`
	} `json:"narration"`
}

// Defaults returns the hardcoded default configuration. Loaded files are
// merged over these so that newly introduced fields never come back unset.
func Defaults() *Config {
	cfg := &Config{}
	cfg.DataDir = filepath.Join(os.Getenv("HOME"), ".storyweaver")
	cfg.LogLevel = "info"
	cfg.HTTP.Enabled = true
	cfg.HTTP.Listen = "127.0.0.1:8791"
	cfg.Story.Provider = provider.Gemini
	cfg.Story.Model = "gemini-2.5-flash"
	cfg.TTS.Provider = provider.Gemini
	cfg.TTS.Model = "gemini-2.5-flash-preview-tts"
	cfg.TTS.Voice = "Zephyr"
	cfg.TTS.EdgeVoice = "en-US-AriaNeural"
	cfg.Narration.MaxTokens = 4096
	return cfg
}

// Load reads the settings file, merging it over defaults. A missing file
// writes the defaults; an unparseable file degrades to defaults rather than
// blocking startup. Environment variables take highest precedence.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// loadFile reads the settings file merged over defaults, without env
// overrides. Writes that round-trip through Save must start from this form
// so env-sourced credentials never end up persisted.
func loadFile(path string) (*Config, error) {
	cfg := Defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			slog.Warn("settings file is corrupt, using defaults", "path", path, "error", err)
			cfg = Defaults()
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays credentials from the environment (highest precedence).
func applyEnv(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Story.GeminiAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Story.OpenAIAPIKey = key
	}
	if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		cfg.Story.ClaudeAPIKey = key
	}
	if key := os.Getenv("KIMI_API_KEY"); key != "" {
		cfg.Story.KimiAPIKey = key
	}
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		cfg.TTS.ElevenLabsAPIKey = key
	}
}

// Save writes the configuration atomically (temp file + rename), creating
// the parent directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp config: %w", err)
	}
	return nil
}

// ToMap converts the config to a nested map via its JSON form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config map: %w", err)
	}
	return m, nil
}

// ListValues returns the config as a flat dot-keyed map, optionally with
// secret values masked.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue loads the config at path and returns the value for a
// dot-separated key.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue loads the config at path, sets a dot-separated key to the parsed
// value, and saves the result. Values parse as bool, int, or float before
// falling back to string. The edit is applied to the file's contents, not
// the env-merged view, so an unrelated write never persists an env
// credential.
func SetValue(path, key, value string) error {
	cfg, err := loadFile(path)
	if err != nil {
		return err
	}
	m, err := ToMap(cfg)
	if err != nil {
		return err
	}
	flat := Flatten(m)
	flat[key] = parseValue(value)

	data, err := json.Marshal(Unflatten(flat))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	updated := Defaults()
	if err := json.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("apply config value: %w", err)
	}
	return Save(path, updated)
}

func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
