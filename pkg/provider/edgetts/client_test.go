package edgetts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/storyweaver/pkg/provider"
)

func TestGenerateSpeech(t *testing.T) {
	var gotBody ttsRequest
	payload := bytes.Repeat([]byte("a"), 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(&Config{Endpoint: srv.URL})
	audio, err := c.GenerateSpeech(context.Background(), &provider.SpeechRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}

	if gotBody.Voice != DefaultVoice {
		t.Errorf("voice = %s, want default", gotBody.Voice)
	}
	if gotBody.Language != "en-US" || gotBody.Speed != 1.0 {
		t.Errorf("body = %+v", gotBody)
	}
	if audio.Encoding != provider.EncodingCompressed || !bytes.Equal(audio.Compressed, payload) {
		t.Error("audio payload mismatch")
	}
}

func TestGenerateSpeech_TinyResponseRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	c := New(&Config{Endpoint: srv.URL})
	_, err := c.GenerateSpeech(context.Background(), &provider.SpeechRequest{Text: "hello"})
	if err == nil {
		t.Fatal("expected error for sub-minimum payload")
	}
	if !strings.Contains(err.Error(), "invalid audio data") {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateSpeech_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(&Config{Endpoint: srv.URL})
	_, err := c.GenerateSpeech(context.Background(), &provider.SpeechRequest{Text: "hello"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v, want status 503 in text", err)
	}
}

func TestValidate(t *testing.T) {
	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ttsRequest
		json.NewDecoder(r.Body).Decode(&body)
		gotText = body.Text
		w.Write(bytes.Repeat([]byte("a"), 200))
	}))
	defer srv.Close()

	c := New(&Config{Endpoint: srv.URL})
	if err := c.Validate(context.Background()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if gotText != "Test" {
		t.Errorf("probe text = %q", gotText)
	}
}
