package html

import (
	"errors"
	"strings"

	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Field options naming translation keys.
const (
	LabelKeyOption = "label_key"
)

// IssueKeyPrefix prefixes the translation key of a validation issue; the kind
// completes it ("validation.TooShort"). The issue params are passed as the
// single translation argument.
const IssueKeyPrefix = "validation."

// ErrMissingTranslator is passed to the missing handler when a key needs
// translating but no Translator is configured.
var ErrMissingTranslator = errors.New("html: translator not configured")

// Translator resolves a key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated. The default returns the fallback, or the key when there is none.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// WithTranslator localises labels and validation messages for locale.
func WithTranslator(t Translator, locale string) Option {
	return func(r *Renderer) {
		r.translator = t
		r.locale = locale
	}
}

// WithMissingTranslation overrides the missing key handler.
func WithMissingTranslation(h MissingTranslationHandler) Option {
	return func(r *Renderer) {
		if h != nil {
			r.onMissing = h
		}
	}
}

func (r *Renderer) fieldLabel(f field.Field, fallback string) string {
	key := strings.TrimSpace(f.Options.String(LabelKeyOption))
	if key == "" {
		return fallback
	}
	return r.translate(key, fallback)
}

func (r *Renderer) issueMessage(issue *validation.Issue) string {
	if issue == nil {
		return ""
	}
	if r.translator == nil {
		return issue.Message
	}
	return r.translate(IssueKeyPrefix+string(issue.Kind), issue.Message, issue.Params)
}

func (r *Renderer) translate(key, fallback string, args ...any) string {
	onMissing := r.onMissing
	if onMissing == nil {
		onMissing = func(_, key string, _ []any, _ error) string {
			if strings.TrimSpace(fallback) != "" {
				return fallback
			}
			return key
		}
	}
	if r.translator == nil {
		return onMissing(r.locale, key, args, ErrMissingTranslator)
	}
	msg, err := r.translator.Translate(r.locale, key, args...)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	return onMissing(r.locale, key, args, err)
}
