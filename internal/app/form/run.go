package form

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"strings"
)

// Rejection is a submit refused because of what the record contains, as
// opposed to a failure to reach the backend at all.
type Rejection struct {
	Message string
	Errors  assessment.Errors
}

func (r *Rejection) Error() string {
	if r.Message != "" {
		return r.Message
	}
	fields := r.Errors.Fields()
	if len(fields) == 0 {
		return "submission rejected"
	}
	return fmt.Sprintf("submission rejected: invalid %s", strings.Join(fields, ", "))
}

// Run submits the form and folds the result into one error: nil on success,
// *Rejection when the record was refused, the collaborator's own error when
// the submit never got an answer.
func (f *Form[R]) Run(ctx context.Context) (any, error) {
	out, err := f.Submit(ctx)
	switch {
	case errors.Is(err, ErrNotSubmittable):
		return nil, &Rejection{Errors: f.Errors()}
	case err != nil:
		return nil, err
	}

	f.mu.Lock()
	cause := f.cause
	f.mu.Unlock()

	if cause != nil {
		return nil, cause
	}
	if !out.Success {
		return nil, &Rejection{Message: out.Message, Errors: f.Errors()}
	}
	return out.Data, nil
}
