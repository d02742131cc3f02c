package assessment

import (
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a field error independently of its wording.
type Kind string

const (
	KindRequired    Kind = "required"
	KindType        Kind = "type"
	KindRange       Kind = "range"
	KindRatio       Kind = "ratio"
	KindServerField Kind = "server_field"
	KindTransport   Kind = "transport"
)

// Message codes. Each code has an English template in DefaultMessages; the
// {n} placeholders are filled from FieldError.Params in order.
const (
	CodeRequired           = "required"
	CodeNotNumber          = "type.number"
	CodeNotInteger         = "type.integer"
	CodeNotDate            = "type.date"
	CodeNotBool            = "type.bool"
	CodeUnknownTrialType   = "type.trial_type"
	CodeTrialTypeSuggest   = "type.trial_type_suggest"
	CodeBelowMin           = "range.min"
	CodeAboveMax           = "range.max"
	CodeNotPositive        = "range.positive"
	CodeFutureDate         = "range.future"
	CodeTooOld             = "range.too_old"
	CodeNotEligible        = "range.not_eligible"
	CodeTooLong            = "range.too_long"
	CodeTrialMax           = "range.trial_max"
	CodeSittingAboveHeight = "ratio.sitting_above_height"
	CodeSittingRatio       = "ratio.sitting_min"
	CodeArmSpanRatio       = "ratio.arm_span"
	CodeServer             = "server"
	CodeTransport          = "transport"
)

func DefaultMessages() map[string]string {
	return map[string]string{
		CodeRequired:           "{0} is required",
		CodeNotNumber:          "{0} must be a number",
		CodeNotInteger:         "{0} must be a whole number",
		CodeNotDate:            "{0} must be a date in YYYY-MM-DD format",
		CodeNotBool:            "{0} must be true or false",
		CodeUnknownTrialType:   "{0} must be one of {1}",
		CodeTrialTypeSuggest:   "{0} must be one of {1}, did you mean {2}?",
		CodeBelowMin:           "{0} must be at least {1}",
		CodeAboveMax:           "{0} must be at most {1}",
		CodeNotPositive:        "{0} must be greater than 0",
		CodeFutureDate:         "{0} cannot be later than {1}",
		CodeTooOld:             "{0} cannot be earlier than {1}",
		CodeNotEligible:        "{0} {1} does not belong to an actively enrolled athlete",
		CodeTooLong:            "{0} must be at most {1} characters long",
		CodeTrialMax:           "{0} for {1} must be at most {2} {3}",
		CodeSittingAboveHeight: "{0} must not exceed {1}",
		CodeSittingRatio:       "{0} must be at least {2} times {1}",
		CodeArmSpanRatio:       "{0} divided by {1} must be between {2} and {3}",
		CodeServer:             "{0}",
		CodeTransport:          "{0}",
	}
}

var defaultMessages = DefaultMessages()

// FieldError is a validation failure attributed to one named input.
type FieldError struct {
	Field   string   `json:"field"`
	Kind    Kind     `json:"kind"`
	Code    string   `json:"code"`
	Params  []string `json:"params,omitempty"`
	Message string   `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

func newFieldError(field string, kind Kind, code string, params ...string) *FieldError {
	return &FieldError{
		Field:   field,
		Kind:    kind,
		Code:    code,
		Params:  params,
		Message: Render(defaultMessages[code], params...),
	}
}

// ServerError wraps a message returned by the backend for one field.
func ServerError(field, message string) FieldError {
	return *newFieldError(field, KindServerField, CodeServer, message)
}

// TransportError describes a submit failure not attributable to any field.
func TransportError(message string) FieldError {
	return *newFieldError("", KindTransport, CodeTransport, message)
}

// Render replaces {n} placeholders in template with params[n].
func Render(template string, params ...string) string {
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for i, p := range params {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", p)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Result is what every field validator returns.
type Result struct {
	Valid bool
	Err   *FieldError
}

func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

func ok() Result {
	return Result{Valid: true}
}

func fail(field string, kind Kind, code string, params ...string) Result {
	return Result{Err: newFieldError(field, kind, code, params...)}
}

// Errors maps field names to their current error.
type Errors map[string]FieldError

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names in lexical order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for f, fe := range e {
		out[f] = fe.Message
	}
	return out
}

func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for f, fe := range e {
		out[f] = fe
	}
	return out
}

func (e Errors) add(r Result) {
	if !r.Valid && r.Err != nil {
		e[r.Err.Field] = *r.Err
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
