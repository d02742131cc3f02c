// Package i18n turns validation results into text for the user's locale.
// Validators only produce a kind, a code and params; wording lives here.
package i18n

import (
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
	"strings"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

const (
	termPrefix   = "term."
	classPrefix  = "class."
	detailSuffix = ".detail"
)

var supported = []language.Tag{language.English, language.Spanish}

type Presenter struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator
	matcher  language.Matcher
}

// New builds a presenter whose fallback is defaultLocale ("en" or "es").
func New(defaultLocale string) (*Presenter, error) {
	uni := ut.New(en.New(), en.New(), es.New())
	for locale, c := range catalogs {
		t, _ := uni.GetTranslator(locale)
		if err := c.register(t); err != nil {
			return nil, fmt.Errorf("can't register %s messages: %w", locale, err)
		}
	}

	fallback, found := uni.GetTranslator(strings.ToLower(defaultLocale))
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocale, defaultLocale)
	}

	return &Presenter{
		uni:      uni,
		fallback: fallback,
		matcher:  language.NewMatcher(supported),
	}, nil
}

// Negotiate picks a translator from an Accept-Language header value.
func (p *Presenter) Negotiate(acceptLanguage string) ut.Translator {
	if strings.TrimSpace(acceptLanguage) == "" {
		return p.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return p.fallback
	}
	_, idx, confidence := p.matcher.Match(tags...)
	if confidence == language.No {
		return p.fallback
	}
	base, _ := supported[idx].Base()
	return p.Translator(base.String())
}

func (p *Presenter) Translator(locale string) ut.Translator {
	if t, found := p.uni.GetTranslator(locale); found {
		return t
	}
	return p.fallback
}

// FieldError renders one error. Messages that came from the backend are
// shown as they are.
func (p *Presenter) FieldError(t ut.Translator, fe assessment.FieldError) string {
	if fe.Kind == assessment.KindServerField || fe.Kind == assessment.KindTransport {
		return fe.Message
	}

	params := make([]string, len(fe.Params))
	for i, param := range fe.Params {
		params[i] = term(t, param)
	}

	msg, err := t.T(fe.Code, params...)
	if err != nil || msg == "" {
		return fe.Message
	}
	return msg
}

func (p *Presenter) Errors(t ut.Translator, errs assessment.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, fe := range errs {
		out[field] = p.FieldError(t, fe)
	}
	return out
}

// Field returns the display name of a form field.
func (p *Presenter) Field(t ut.Translator, field string) string {
	return term(t, field)
}

func (p *Presenter) Classification(t ut.Translator, c assessment.Classification) assessment.Classification {
	if c.IsSentinel() {
		return c
	}
	if label, err := t.T(classPrefix + c.Code); err == nil {
		c.Label = label
	}
	if c.Detail != "" {
		if detail, err := t.T(classPrefix + c.Code + detailSuffix); err == nil {
			c.Detail = detail
		}
	}
	return c
}

func (p *Presenter) Metrics(t ut.Translator, m assessment.Metrics) assessment.Metrics {
	m.BMIClass = p.Classification(t, m.BMIClass)
	m.CormicClass = p.Classification(t, m.CormicClass)
	return m
}

func term(t ut.Translator, s string) string {
	if v, err := t.T(termPrefix + s); err == nil {
		return v
	}
	return s
}
