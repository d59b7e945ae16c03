// Package translate defines the contract for the translation service used
// to bridge non-English sessions onto an English-only serving endpoint.
package translate

import "context"

// LanguageEnglish is the pivot language the serving endpoint answers in.
const LanguageEnglish = "en"

// Translator converts text between languages. An empty from language asks
// the service to detect the source.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}
