// Package speech defines contracts for the managed speech services the
// audio endpoints delegate to.
package speech

import "context"

// DefaultLocales are the candidate locales offered to the recognizer when
// the caller does not pin any.
var DefaultLocales = []string{"en-IN", "hi-IN"}

// DefaultVoice is the synthesis voice used when a session has not chosen one.
const DefaultVoice = "en-US-AvaMultilingualNeural"

// Transcription is the recognized text for one audio utterance.
type Transcription struct {
	Text       string  `json:"text"`
	Locale     string  `json:"locale,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	DurationMs int64   `json:"duration_ms,omitempty"`
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string, locales []string) (*Transcription, error)
}

// Synthesizer renders text as spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}
