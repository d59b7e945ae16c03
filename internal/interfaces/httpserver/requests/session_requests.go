package requests

// PutSettingsRequest models PUT /v1/sessions/:session_id/settings input.
type PutSettingsRequest struct {
	Language string   `json:"language" binding:"required"`
	Locales  []string `json:"locales,omitempty"`
	Voice    string   `json:"voice,omitempty"`
}

// SynthesizeRequest models POST /v1/speech/synthesize input. An empty voice
// uses the session's voice when a session id is given, else the default.
type SynthesizeRequest struct {
	Text      string `json:"text" binding:"required"`
	Voice     string `json:"voice,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}
