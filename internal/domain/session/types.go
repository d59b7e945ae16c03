// Package session holds per-session presentation settings such as the
// caller's language and synthesis voice.
package session

import "context"

// Settings are the adjustable knobs for one caller session.
type Settings struct {
	Language string   `json:"language"`
	Locales  []string `json:"locales,omitempty"`
	Voice    string   `json:"voice,omitempty"`
}

// DefaultSettings is what a session gets before it saves anything.
func DefaultSettings() Settings {
	return Settings{Language: "en"}
}

// Store persists session settings. Get returns (nil, nil) when the session
// has never saved settings.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Settings, error)
	Put(ctx context.Context, sessionID string, settings Settings) error
}
