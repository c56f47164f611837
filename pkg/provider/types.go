package provider

// StoryRequest carries the inputs for one narrative generation call.
// Prompt may be empty when an image is present; callers validate that at
// least one of the two is set before reaching the adapter.
type StoryRequest struct {
	Prompt     string
	ImageData  []byte
	ImageMIME  string
	Model      string
	Credential string
}

// StoryResult is the narrative text plus the ordered grounding sources the
// backend consulted. Source order reflects provider-returned relevance and
// is never reordered.
type StoryResult struct {
	Story   string   `json:"story"`
	Sources []Source `json:"sources"`
}

// Source is a grounding reference: a citation the narrative drew upon.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// SpeechRequest carries the inputs for one narration synthesis call.
// Voice is required by some backends (ElevenLabs voice ID, Edge voice name)
// and optional for others.
type SpeechRequest struct {
	Text       string
	Model      string
	Voice      string
	Credential string
}

// TranslateRequest carries the inputs for one translation call. The target
// language is fixed by the adapter.
type TranslateRequest struct {
	Text       string
	Model      string
	Credential string
}

// AudioEncoding tags which Audio variant a backend produced.
type AudioEncoding string

const (
	// EncodingPCM is raw single-channel 16-bit linear PCM at SampleRate.
	EncodingPCM AudioEncoding = "pcm"
	// EncodingCompressed is an opaque compressed byte buffer (e.g. MPEG).
	EncodingCompressed AudioEncoding = "compressed"
)

// Audio is a tagged union over the two native synthesis encodings. Exactly
// one of PCM or Compressed is populated, indicated by Encoding.
type Audio struct {
	Encoding AudioEncoding `json:"encoding"`

	// PCM variant.
	PCM           []byte `json:"pcm,omitempty"`
	SampleRate    int    `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	BitsPerSample int    `json:"bits_per_sample,omitempty"`

	// Compressed variant.
	Compressed []byte `json:"compressed,omitempty"`
	MIMEType   string `json:"mime_type,omitempty"`
}
