package form

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/samber/lo"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var (
	ErrImmutableField = errors.New("field cannot be changed after creation")
	ErrSubmitted      = errors.New("form already submitted")
	ErrSubmitInFlight = errors.New("submit already in progress")
	ErrNotSubmittable = errors.New("form has field errors")
)

// Schema knows how to write and validate one kind of record.
type Schema[R any] interface {
	Fields() []string
	Set(rec *R, field, value string) error
	Validate(rec R) assessment.Errors
	Immutable(field string) bool
}

// Outcome is the normalized answer of the submit collaborator. A failed
// outcome carries field errors, a form-level message, or both.
type Outcome struct {
	Success     bool
	Data        any
	FieldErrors map[string]string
	Message     string
}

// SubmitFunc sends the record to the backend. A returned error means no
// structured answer arrived (network failure, storage outage).
type SubmitFunc[R any] func(ctx context.Context, rec R) (Outcome, error)

type Option func(*options)

type options struct {
	logger       *slog.Logger
	onTransition func(from, to State)
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithTransitionHook(hook func(from, to State)) Option {
	return func(o *options) {
		o.onTransition = hook
	}
}

// Form owns one in-progress record and tracks its validation state.
type Form[R any] struct {
	mu     sync.Mutex
	schema Schema[R]
	submit SubmitFunc[R]
	opts   options

	record    R
	state     State
	local     assessment.Errors
	server    assessment.Errors
	formError *assessment.FieldError
	cause     error
	data      any
}

// New starts an empty record for creation.
func New[R any](schema Schema[R], submit SubmitFunc[R], opts ...Option) *Form[R] {
	var zero R
	return Load(schema, submit, zero, opts...)
}

// Load starts from a record rebuilt from the server's canonical copy.
func Load[R any](schema Schema[R], submit SubmitFunc[R], record R, opts ...Option) *Form[R] {
	f := &Form[R]{
		schema: schema,
		submit: submit,
		record: record,
		state:  Pristine,
		local:  make(assessment.Errors),
		server: make(assessment.Errors),
	}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

func (f *Form[R]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[R]) Record() R {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

// Data is what the collaborator returned on success.
func (f *Form[R]) Data() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

// FormError is the banner-level failure of the last submit, if any.
func (f *Form[R]) FormError() *assessment.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.formError == nil {
		return nil
	}
	fe := *f.formError
	return &fe
}

func (f *Form[R]) Errors() assessment.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merged()
}

// Set writes one field and revalidates the whole record. Only the server
// error of the edited field is dropped.
func (f *Form[R]) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Submitted {
		return ErrSubmitted
	}
	if f.schema.Immutable(field) {
		return fmt.Errorf("%w: %s", ErrImmutableField, field)
	}
	if err := f.schema.Set(&f.record, field, value); err != nil {
		return err
	}

	delete(f.server, field)

	if f.state == Submitting {
		f.local = f.schema.Validate(f.record)
		return nil
	}
	f.transition(Editing)
	f.revalidate()
	return nil
}

// Validate reruns every field validator and returns the merged error map.
func (f *Form[R]) Validate() assessment.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Submitting || f.state == Submitted {
		return f.merged()
	}
	f.revalidate()
	return f.merged()
}

func (f *Form[R]) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == Valid
}

// Submit validates once more and, if nothing is wrong, hands a snapshot of
// the record to the collaborator. Edits made while it runs are kept in the
// form but are not part of the payload.
func (f *Form[R]) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	case Submitted:
		f.mu.Unlock()
		return Outcome{}, ErrSubmitted
	}

	f.revalidate()
	if f.state != Valid {
		errs := f.merged()
		f.mu.Unlock()
		return Outcome{Success: false, FieldErrors: errs.Messages()}, ErrNotSubmittable
	}

	snapshot := f.record
	f.formError = nil
	f.cause = nil
	f.transition(Submitting)
	f.mu.Unlock()

	out, err := f.submit(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case err != nil:
		fe := assessment.TransportError(err.Error())
		f.formError = &fe
		f.cause = err
		f.settle()
		return Outcome{Success: false, Message: err.Error()}, nil
	case out.Success:
		f.data = out.Data
		f.transition(Submitted)
	default:
		banner := f.mergeServerErrors(out.FieldErrors)
		if out.Message != "" {
			banner = append([]string{out.Message}, banner...)
		}
		if len(banner) != 0 {
			fe := assessment.TransportError(strings.Join(banner, "; "))
			fe.Kind = assessment.KindServerField
			f.formError = &fe
			out.Message = fe.Message
		}
		f.transition(SubmitFailed)
	}
	return out, nil
}

// mergeServerErrors attaches server errors to their fields. Errors on keys
// the user cannot edit are returned as banner lines instead, otherwise no
// Set could ever clear them.
func (f *Form[R]) mergeServerErrors(errs map[string]string) []string {
	fields := lo.Keys(errs)
	sort.Strings(fields)

	known := f.schema.Fields()
	var banner []string
	for _, field := range fields {
		msg := errs[field]
		switch {
		case !lo.Contains(known, field):
			banner = append(banner, msg)
		case f.schema.Immutable(field):
			banner = append(banner, field+": "+msg)
		default:
			f.server[field] = assessment.ServerError(field, msg)
		}
	}
	return banner
}

func (f *Form[R]) revalidate() {
	f.local = f.schema.Validate(f.record)
	f.settle()
}

// settle picks Valid or Invalid from the current error maps.
func (f *Form[R]) settle() {
	if len(f.local) == 0 && len(f.server) == 0 {
		f.transition(Valid)
	} else {
		f.transition(Invalid)
	}
}

func (f *Form[R]) merged() assessment.Errors {
	out := f.local.Clone()
	for field, fe := range f.server {
		out[field] = fe
	}
	return out
}

func (f *Form[R]) transition(to State) {
	from := f.state
	if from == to {
		return
	}
	f.state = to
	if f.opts.logger != nil {
		f.opts.logger.Debug("form state changed", "from", from.String(), "to", to.String())
	}
	if f.opts.onTransition != nil {
		f.opts.onTransition(from, to)
	}
}
