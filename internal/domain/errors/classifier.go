// Package errors classifies failures from store and provider calls so retry
// loops and the mirror queue can decide what to do with them.
package errors

import (
	"context"
	"errors"

	"jan-server/services/assistant-api/internal/domain/status"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// Classifier maps errors to severity levels.
type Classifier struct {
	rules []ClassificationRule
}

// ClassificationRule defines a custom classification rule. Rules run before
// the built-in platform error mapping.
type ClassificationRule struct {
	Match    func(error) bool
	Severity status.ErrorSeverity
}

// NewClassifier creates a classifier with the default mapping.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// AddRule registers a custom rule. Rules are evaluated in registration order.
func (c *Classifier) AddRule(rule ClassificationRule) {
	c.rules = append(c.rules, rule)
}

// Classify determines the severity of an error.
//
// Transient store and provider failures (database, external, timeout, rate
// limit, conflict) are retryable. A missing target is skippable: there is
// nothing left to reconcile against. Validation and auth failures are fatal
// because retrying the same input cannot succeed.
func (c *Classifier) Classify(err error) status.ErrorSeverity {
	if err == nil {
		return ""
	}

	for _, rule := range c.rules {
		if rule.Match(err) {
			return rule.Severity
		}
	}

	// A cancelled or expired attempt context says nothing about the target.
	// The work may still succeed on a later attempt.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.ErrorSeverityRetryable
	}

	if platformErr := platformerrors.GetPlatformError(err); platformErr != nil {
		return severityForType(platformErr.GetErrorType())
	}

	// Unknown errors default to retryable so transient blips are not
	// escalated into abandoned work.
	return status.ErrorSeverityRetryable
}

func severityForType(errorType platformerrors.ErrorType) status.ErrorSeverity {
	switch errorType {
	case platformerrors.ErrorTypeDatabaseError,
		platformerrors.ErrorTypeExternal,
		platformerrors.ErrorTypeTimeout,
		platformerrors.ErrorTypeRateLimited,
		platformerrors.ErrorTypeConflict:
		return status.ErrorSeverityRetryable
	case platformerrors.ErrorTypeNotFound,
		platformerrors.ErrorTypeExpired:
		return status.ErrorSeveritySkippable
	case platformerrors.ErrorTypeValidation,
		platformerrors.ErrorTypeUnauthorized,
		platformerrors.ErrorTypeForbidden,
		platformerrors.ErrorTypeNotImplemented:
		return status.ErrorSeverityFatal
	default:
		return status.ErrorSeverityRetryable
	}
}

// defaultClassifier backs the package-level Classify.
var defaultClassifier = NewClassifier()

// Classify determines the severity of an error using the default mapping.
func Classify(err error) status.ErrorSeverity {
	return defaultClassifier.Classify(err)
}
