package config

import (
	"reflect"
	"testing"
)

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"story": map[string]any{
			"provider": "gemini",
			"model":    "gemini-2.5-flash",
		},
		"log_level": "info",
	}

	flat := Flatten(nested)
	if flat["story.provider"] != "gemini" || flat["log_level"] != "info" {
		t.Errorf("flat = %v", flat)
	}

	back := Unflatten(flat)
	if !reflect.DeepEqual(back, nested) {
		t.Errorf("round trip: got %v, want %v", back, nested)
	}
}

func TestMaskSecrets(t *testing.T) {
	flat := map[string]any{
		"story.gemini_api_key": "AIzaSy12345678",
		"story.provider":       "gemini",
		"tts.elevenlabs_api_key": "",
	}

	masked := MaskSecrets(flat)
	if masked["story.gemini_api_key"] != "***5678" {
		t.Errorf("masked key = %v", masked["story.gemini_api_key"])
	}
	if masked["story.provider"] != "gemini" {
		t.Errorf("non-secret changed: %v", masked["story.provider"])
	}
	if masked["tts.elevenlabs_api_key"] != "" {
		t.Errorf("empty secret should stay empty: %v", masked["tts.elevenlabs_api_key"])
	}
}
