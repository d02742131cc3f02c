package measurementservice

import (
	"context"
	"errors"
	"github.com/burenotti/hoops_backend/internal/adapter/telemetry"
	"github.com/burenotti/hoops_backend/internal/app/form"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/google/uuid"
	"log/slog"
	"strings"
	"time"
)

const kind = "measurement"

const (
	msgUnknownAthlete = "athlete does not exist"
	msgDuplicate      = "a measurement for this athlete and date already exists"
	msgImmutable      = "cannot be changed"
)

type Telemetry interface {
	Submission(kind, outcome string)
	FieldErrors(kind string, errs assessment.Errors)
}

type Service struct {
	logger    *slog.Logger
	validator *assessment.MeasurementValidator
	clock     assessment.Clock
	location  *time.Location
	telemetry Telemetry
}

func New(
	constraints *assessment.Constraints,
	location *time.Location,
	t Telemetry,
	logger *slog.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	if t == nil {
		t = telemetry.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		validator: assessment.NewMeasurementValidator(constraints),
		clock:     assessment.SystemClock{Location: location},
		location:  location,
		telemetry: t,
	}
}

// WithClock swaps the source of "today". Tests pin the date with it.
func (s *Service) WithClock(c assessment.Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) Constraints() *assessment.Constraints {
	return s.validator.Constraints()
}

func (s *Service) schema(mode assessment.Mode) assessment.MeasurementSchema {
	return assessment.MeasurementSchema{
		Validator: s.validator,
		Today:     s.clock.Today(),
		Mode:      mode,
	}
}

// Report is the result of a dry run: what the record looks like after
// normalization, what is wrong with it and the metrics it would get.
type Report struct {
	Record  assessment.MeasurementInput `json:"record"`
	Errors  assessment.Errors           `json:"-"`
	Metrics assessment.Metrics          `json:"metrics"`
}

func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validate runs the field validators without touching storage.
func (s *Service) Validate(payload map[string]any, mode assessment.Mode) Report {
	schema := s.schema(mode)
	in := assessment.NormalizeMeasurement(payload)
	schema.Derive(&in)
	return Report{
		Record:  in,
		Errors:  schema.Validate(in),
		Metrics: schema.Metrics(in),
	}
}

func (s *Service) Create(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	recordedBy string,
	payload map[string]any,
) (*measurement.Measurement, error) {
	schema := s.schema(assessment.ModeCreate)
	in := assessment.NormalizeMeasurement(payload)
	schema.Derive(&in)

	submit := func(ctx context.Context, rec assessment.MeasurementInput) (form.Outcome, error) {
		a, err := rec.Anthropometry(s.location)
		if err != nil {
			return form.Outcome{}, err
		}

		var out form.Outcome
		err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
			exists, err := ctx.AthleteStorage.AthleteExists(ctx.Context(), a.AthleteID)
			if err != nil {
				return err
			}
			if !exists {
				out = fieldFailure(assessment.FieldAthleteID, msgUnknownAthlete)
				return nil
			}

			duplicate, err := ctx.MeasurementStorage.ExistsForDate(ctx.Context(), a.AthleteID, a.RecordDate)
			if err != nil {
				return err
			}
			if duplicate {
				out = fieldFailure(assessment.FieldRecordDate, msgDuplicate)
				return nil
			}

			m := measurement.New(uuid.NewString(), a, recordedBy)
			if err := ctx.MeasurementStorage.Add(ctx.Context(), m); err != nil {
				switch {
				case errors.Is(err, measurement.ErrDuplicateRecord):
					out = fieldFailure(assessment.FieldRecordDate, msgDuplicate)
					return nil
				case errors.Is(err, profile.ErrAthleteNotFound):
					out = fieldFailure(assessment.FieldAthleteID, msgUnknownAthlete)
					return nil
				}
				return err
			}

			out = form.Outcome{Success: true, Data: m}
			return ctx.Commit()
		})
		return out, err
	}

	f := form.Load[assessment.MeasurementInput](schema, submit, in, form.WithLogger(s.logger))
	return s.run(ctx, f)
}

// Update applies the fields present in payload to the stored record. The
// athlete and the record date may be repeated but not changed.
func (s *Service) Update(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	measurementID string,
	payload map[string]any,
) (*measurement.Measurement, error) {
	stored, err := s.Get(ctx, uow, measurementID)
	if err != nil {
		return nil, err
	}

	schema := s.schema(assessment.ModeEdit)
	current := schema.Prefill(stored.Anthropometry())

	submit := func(ctx context.Context, rec assessment.MeasurementInput) (form.Outcome, error) {
		a, err := rec.Anthropometry(s.location)
		if err != nil {
			return form.Outcome{}, err
		}

		var out form.Outcome
		err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
			m, err := ctx.MeasurementStorage.GetByID(ctx.Context(), measurementID)
			if err != nil {
				return err
			}
			if err := m.Update(a); err != nil {
				if errors.Is(err, measurement.ErrImmutableChanged) {
					out = form.Outcome{Message: err.Error()}
					return nil
				}
				return err
			}
			if err := ctx.MeasurementStorage.Persist(ctx.Context(), m); err != nil {
				return err
			}

			out = form.Outcome{Success: true, Data: m}
			return ctx.Commit()
		})
		return out, err
	}

	f := form.Load[assessment.MeasurementInput](schema, submit, current, form.WithLogger(s.logger))

	in := assessment.NormalizeMeasurement(payload)
	immutable := make(assessment.Errors)
	for _, field := range assessment.Present(payload, false) {
		value, _ := in.Value(field)
		if schema.Immutable(field) {
			if was, _ := current.Value(field); strings.TrimSpace(value) != was {
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

func (s *Service) Get(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	measurementID string,
) (m *measurement.Measurement, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		m, err = ctx.MeasurementStorage.GetByID(ctx.Context(), measurementID)
		return err
	})
	return
}

func (s *Service) ListByAthlete(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	athleteID int64,
	limit, offset int,
) (list []*measurement.Measurement, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		exists, err := ctx.AthleteStorage.AthleteExists(ctx.Context(), athleteID)
		if err != nil {
			return err
		}
		if !exists {
			return profile.ErrAthleteNotFound
		}
		list, err = ctx.MeasurementStorage.ListByAthlete(ctx.Context(), athleteID, limit, offset)
		return err
	})
	return
}

func (s *Service) run(
	ctx context.Context,
	f *form.Form[assessment.MeasurementInput],
) (*measurement.Measurement, error) {
	data, err := f.Run(ctx)
	if err != nil {
		var rejection *form.Rejection
		if errors.As(err, &rejection) {
			return nil, s.rejected(rejection)
		}
		s.telemetry.Submission(kind, telemetry.OutcomeError)
		s.logger.Error("failed to submit measurement", "error", err)
		return nil, err
	}

	s.telemetry.Submission(kind, telemetry.OutcomeAccepted)
	return data.(*measurement.Measurement), nil
}

func (s *Service) rejected(r *form.Rejection) error {
	s.telemetry.Submission(kind, telemetry.OutcomeRejected)
	s.telemetry.FieldErrors(kind, r.Errors)
	s.logger.Debug("measurement rejected", "fields", r.Errors.Fields(), "message", r.Message)
	return r
}

func fieldFailure(field, message string) form.Outcome {
	return form.Outcome{FieldErrors: map[string]string{field: message}}
}
