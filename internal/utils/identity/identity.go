// Package identity carries the authenticated subject through request
// contexts, so storage writes can stamp ownership without widening call
// signatures on the way down.
package identity

import "context"

type subjectKey struct{}

// WithSubject stores the authenticated subject on the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the subject stored on the context, or the
// empty string for unauthenticated requests.
func SubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey{}).(string); ok {
		return subject
	}
	return ""
}
