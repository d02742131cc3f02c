package assessment

import (
	"fmt"
	"strconv"
	"time"
)

// MeasurementSchema binds a validator to the context of one form: the day
// it is filled in, whether it creates or edits, and the eligible athletes.
type MeasurementSchema struct {
	Validator *MeasurementValidator
	Today     time.Time
	Mode      Mode
	Athletes  AthleteSet
}

func (s MeasurementSchema) Fields() []string {
	return MeasurementFields()
}

func (s MeasurementSchema) Immutable(field string) bool {
	return s.Mode == ModeEdit && (field == FieldAthleteID || field == FieldRecordDate)
}

// Set writes one raw value and refreshes the generated notes. Writing
// non-empty notes pins them; clearing them hands them back to the generator.
func (s MeasurementSchema) Set(in *MeasurementInput, field, value string) error {
	p, ok := in.field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	*p = value
	if field == FieldNotes {
		in.NotesEdited = !isEmpty(value)
	}
	s.Derive(in)
	return nil
}

func (s MeasurementSchema) Derive(in *MeasurementInput) {
	if !in.NotesEdited {
		in.Notes = s.Metrics(*in).Summary()
	}
}

func (s MeasurementSchema) Metrics(in MeasurementInput) Metrics {
	return s.Validator.Constraints().MetricsOf(in)
}

func (s MeasurementSchema) Validate(in MeasurementInput) Errors {
	return s.Validator.Validate(MeasurementContext{
		Record:   in,
		Today:    s.Today,
		Mode:     s.Mode,
		Athletes: s.Athletes,
	})
}

// Prefill converts a stored measurement back into form values. Notes equal
// to the generated summary stay generated.
func (s MeasurementSchema) Prefill(a Anthropometry) MeasurementInput {
	in := MeasurementInput{
		AthleteID:      strconv.FormatInt(a.AthleteID, 10),
		RecordDate:     a.RecordDate.Format(DateLayout),
		WeightKg:       formatFloat(a.WeightKg),
		HeightM:        formatFloat(a.HeightM),
		SittingHeightM: formatFloat(a.SittingHeightM),
		ArmSpanM:       formatFloat(a.ArmSpanM),
		Notes:          a.Notes,
	}
	in.NotesEdited = a.Notes != "" && a.Notes != s.Metrics(in).Summary()
	return in
}

type TrialSchema struct {
	Validator *TrialValidator
	Today     time.Time
	Mode      Mode
	Athletes  AthleteSet
}

func (s TrialSchema) Fields() []string {
	return TrialFields()
}

func (s TrialSchema) Immutable(field string) bool {
	return s.Mode == ModeEdit && (field == FieldAthleteID || field == FieldTrialType)
}

// Set writes one raw value. Notes are cut to the configured cap here, so an
// over-long paste never reaches validation.
func (s TrialSchema) Set(in *TrialInput, field, value string) error {
	p, ok := in.field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if field == FieldNotes {
		value = truncate(value, s.Validator.Constraints().TrialNotesMax)
	}
	if field == FieldTrialType {
		if t, known := ParseTrialType(value); known {
			value = string(t)
		}
	}
	*p = value
	return nil
}

func (s TrialSchema) Validate(in TrialInput) Errors {
	return s.Validator.Validate(TrialContext{
		Record:   in,
		Today:    s.Today,
		Mode:     s.Mode,
		Athletes: s.Athletes,
	})
}

func (s TrialSchema) Prefill(t Trial) TrialInput {
	return TrialInputFrom(t)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
