package trialservice

import (
	"context"
	"errors"
	enrollmentstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/enrollments"
	trialstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/trials"
	"github.com/burenotti/hoops_backend/internal/adapter/telemetry"
	"github.com/burenotti/hoops_backend/internal/app/form"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"log/slog"
	"strings"
	"time"
)

const kind = "trial"

const (
	msgNotEnrolled    = "athlete has no active enrollment"
	msgUnknownAthlete = "athlete does not exist"
	msgImmutable      = "cannot be changed"
)

type Telemetry interface {
	Submission(kind, outcome string)
	FieldErrors(kind string, errs assessment.Errors)
}

type Service struct {
	logger    *slog.Logger
	validator *assessment.TrialValidator
	clock     assessment.Clock
	telemetry Telemetry
}

func New(
	constraints *assessment.Constraints,
	location *time.Location,
	t Telemetry,
	logger *slog.Logger,
) *Service {
	if t == nil {
		t = telemetry.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		validator: assessment.NewTrialValidator(constraints),
		clock:     assessment.SystemClock{Location: location},
		telemetry: t,
	}
}

func (s *Service) WithClock(c assessment.Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) Constraints() *assessment.Constraints {
	return s.validator.Constraints()
}

type Report struct {
	Record assessment.TrialInput `json:"record"`
	Errors assessment.Errors     `json:"-"`
}

func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validate is a dry run. On creation the athlete is checked against the
// currently eligible set, so it needs storage.
func (s *Service) Validate(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	payload map[string]any,
	mode assessment.Mode,
) (Report, error) {
	schema, err := s.schema(ctx, uow, mode)
	if err != nil {
		return Report{}, err
	}

	var in assessment.TrialInput
	if err := apply(schema, &in, payload); err != nil {
		return Report{}, err
	}
	return Report{Record: in, Errors: schema.Validate(in)}, nil
}

func (s *Service) Create(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	recordedBy string,
	payload map[string]any,
) (*trial.Trial, error) {
	schema, err := s.schema(ctx, uow, assessment.ModeCreate)
	if err != nil {
		return nil, err
	}

	submit := func(ctx context.Context, rec assessment.TrialInput) (form.Outcome, error) {
		spec, err := rec.Trial()
		if err != nil {
			return form.Outcome{}, err
		}

		var out form.Outcome
		err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
			// the set the form saw may be stale by now
			enrolled, err := ctx.EnrollmentStorage.HasActive(ctx.Context(), spec.AthleteID)
			if err != nil {
				return err
			}
			if !enrolled {
				out = fieldFailure(assessment.FieldAthleteID, msgNotEnrolled)
				return nil
			}

			t := trial.New(uuid.NewString(), spec, recordedBy)
			if err := ctx.TrialStorage.Add(ctx.Context(), t); err != nil {
				if errors.Is(err, profile.ErrAthleteNotFound) {
					out = fieldFailure(assessment.FieldAthleteID, msgUnknownAthlete)
					return nil
				}
				return err
			}

			out = form.Outcome{Success: true, Data: t}
			return ctx.Commit()
		})
		return out, err
	}

	f := form.New[assessment.TrialInput](schema, submit, form.WithLogger(s.logger))
	in := assessment.NormalizeTrial(payload)
	for _, field := range assessment.Present(payload, true) {
		value, _ := in.Value(field)
		if err := f.Set(field, value); err != nil {
			return nil, err
		}
	}
	return s.run(ctx, f)
}

// Update applies the fields present in payload. Athlete and trial type may
// be repeated but not changed.
func (s *Service) Update(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	trialID string,
	payload map[string]any,
) (*trial.Trial, error) {
	stored, err := s.Get(ctx, uow, trialID)
	if err != nil {
		return nil, err
	}

	schema, err := s.schema(ctx, uow, assessment.ModeEdit)
	if err != nil {
		return nil, err
	}
	current := schema.Prefill(stored.Spec())

	submit := func(ctx context.Context, rec assessment.TrialInput) (form.Outcome, error) {
		spec, err := rec.Trial()
		if err != nil {
			return form.Outcome{}, err
		}

		var out form.Outcome
		err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
			t, err := ctx.TrialStorage.GetByID(ctx.Context(), trialID)
			if err != nil {
				return err
			}
			if err := t.Update(spec); err != nil {
				if errors.Is(err, trial.ErrImmutableChanged) {
					out = form.Outcome{Message: err.Error()}
					return nil
				}
				return err
			}
			if err := ctx.TrialStorage.Persist(ctx.Context(), t); err != nil {
				return err
			}

			out = form.Outcome{Success: true, Data: t}
			return ctx.Commit()
		})
		return out, err
	}

	f := form.Load[assessment.TrialInput](schema, submit, current, form.WithLogger(s.logger))

	in := assessment.NormalizeTrial(payload)
	immutable := make(assessment.Errors)
	for _, field := range assessment.Present(payload, true) {
		value, _ := in.Value(field)
		if schema.Immutable(field) {
			if was, _ := current.Value(field); canonical(field, value) != was {
				immutable[field] = assessment.ServerError(field, msgImmutable)
			}
			continue
		}
		if err := f.Set(field, value); err != nil {
			return nil, err
		}
	}
	if len(immutable) != 0 {
		return nil, s.rejected(&form.Rejection{Errors: immutable})
	}

	return s.run(ctx, f)
}

// SetActive toggles whether the trial counts. It bypasses the form because
// no other field changes.
func (s *Service) SetActive(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	trialID string,
	active bool,
) (t *trial.Trial, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if t, err = ctx.TrialStorage.GetByID(ctx.Context(), trialID); err != nil {
			return err
		}
		t.SetActive(active)
		if err := ctx.TrialStorage.Persist(ctx.Context(), t); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) Get(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	trialID string,
) (t *trial.Trial, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		t, err = ctx.TrialStorage.GetByID(ctx.Context(), trialID)
		return err
	})
	return
}

func (s *Service) ListByAthlete(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	athleteID int64,
	filter trialstorage.Filter,
	limit, offset int,
) (list []*trial.Trial, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		list, err = ctx.TrialStorage.ListByAthlete(ctx.Context(), athleteID, filter, limit, offset)
		return err
	})
	return
}

func (s *Service) schema(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	mode assessment.Mode,
) (assessment.TrialSchema, error) {
	schema := assessment.TrialSchema{
		Validator: s.validator,
		Today:     s.clock.Today(),
		Mode:      mode,
	}
	if mode == assessment.ModeEdit {
		return schema, nil
	}

	err := uow.Atomic(ctx, func(ctx *AtomicContext) error {
		eligible, err := ctx.EnrollmentStorage.ListEligible(ctx.Context(), "")
		if err != nil {
			return err
		}
		schema.Athletes = assessment.NewAthleteSet(lo.Map(eligible, func(a enrollmentstorage.EligibleAthlete, _ int) int64 {
			return a.AthleteID
		})...)
		return nil
	})
	return schema, err
}

func (s *Service) run(ctx context.Context, f *form.Form[assessment.TrialInput]) (*trial.Trial, error) {
	data, err := f.Run(ctx)
	if err != nil {
		var rejection *form.Rejection
		if errors.As(err, &rejection) {
			return nil, s.rejected(rejection)
		}
		s.telemetry.Submission(kind, telemetry.OutcomeError)
		s.logger.Error("failed to submit trial", "error", err)
		return nil, err
	}

	s.telemetry.Submission(kind, telemetry.OutcomeAccepted)
	return data.(*trial.Trial), nil
}

func (s *Service) rejected(r *form.Rejection) error {
	s.telemetry.Submission(kind, telemetry.OutcomeRejected)
	s.telemetry.FieldErrors(kind, r.Errors)
	s.logger.Debug("trial rejected", "fields", r.Errors.Fields(), "message", r.Message)
	return r
}

// apply writes every field the payload carries through the schema, so the
// same truncation and case folding happen as on interactive input.
func apply(schema assessment.TrialSchema, in *assessment.TrialInput, payload map[string]any) error {
	normalized := assessment.NormalizeTrial(payload)
	for _, field := range assessment.Present(payload, true) {
		value, _ := normalized.Value(field)
		if err := schema.Set(in, field, value); err != nil {
			return err
		}
	}
	return nil
}

func canonical(field, value string) string {
	value = strings.TrimSpace(value)
	if field == assessment.FieldTrialType {
		if t, ok := assessment.ParseTrialType(value); ok {
			return string(t)
		}
	}
	return value
}

func fieldFailure(field, message string) form.Outcome {
	return form.Outcome{FieldErrors: map[string]string{field: message}}
}
