package prompt

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// DefaultMaxAttempts bounds how often one property is asked again after an
// invalid answer.
const DefaultMaxAttempts = 5

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithValidator sets the validator used to check each answer.
func WithValidator(v *validation.Validator) Option {
	return func(f *Filler) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithInferrer sets the inferrer that decides which properties get a
// multi-line prompt.
func WithInferrer(i *field.Inferrer) Option {
	return func(f *Filler) {
		if i != nil {
			f.inferrer = i
		}
	}
}

// WithMaxAttempts caps re-prompts per property. Values below one keep the
// default.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
