package assessment

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// ratioTolerance absorbs binary rounding in products such as 1.5 * 0.4.
const ratioTolerance = 1e-9

// MeasurementContext is everything a measurement field validator may read.
type MeasurementContext struct {
	Record   MeasurementInput
	Today    time.Time
	Mode     Mode
	Athletes AthleteSet
}

type MeasurementValidator struct {
	c *Constraints
}

func NewMeasurementValidator(c *Constraints) *MeasurementValidator {
	return &MeasurementValidator{c: c}
}

func (v *MeasurementValidator) Constraints() *Constraints {
	return v.c
}

// AthleteID is only checked on creation; the id cannot change afterwards.
func (v *MeasurementValidator) AthleteID(value string, mc MeasurementContext) Result {
	if mc.Mode == ModeEdit {
		return ok()
	}
	return validateAthleteID(value, mc.Athletes)
}

func (v *MeasurementValidator) RecordDate(value string, mc MeasurementContext) Result {
	if mc.Mode == ModeEdit {
		return ok()
	}
	if isEmpty(value) {
		return fail(FieldRecordDate, KindRequired, CodeRequired, FieldRecordDate)
	}
	d, err := parseDate(value, mc.Today.Location())
	if err != nil {
		return fail(FieldRecordDate, KindType, CodeNotDate, FieldRecordDate)
	}
	today := StartOfDay(mc.Today)
	if d.After(today) {
		return fail(FieldRecordDate, KindRange, CodeFutureDate, FieldRecordDate, today.Format(DateLayout))
	}
	earliest := today.AddDate(-v.c.RecordMaxAgeYears, 0, 0)
	if d.Before(earliest) {
		return fail(FieldRecordDate, KindRange, CodeTooOld, FieldRecordDate, earliest.Format(DateLayout))
	}
	return ok()
}

func (v *MeasurementValidator) WeightKg(value string, _ MeasurementContext) Result {
	_, r := number(FieldWeightKg, value, v.c.Weight)
	return r
}

func (v *MeasurementValidator) HeightM(value string, _ MeasurementContext) Result {
	_, r := number(FieldHeightM, value, v.c.Height)
	return r
}

func (v *MeasurementValidator) SittingHeightM(value string, mc MeasurementContext) Result {
	sitting, r := number(FieldSittingHeightM, value, v.c.SittingHeight)
	if !r.Valid {
		return r
	}
	height, hr := number(FieldHeightM, mc.Record.HeightM, v.c.Height)
	if !hr.Valid {
		return ok()
	}
	if sitting > height {
		return fail(FieldSittingHeightM, KindRatio, CodeSittingAboveHeight, FieldSittingHeightM, FieldHeightM)
	}
	if sitting < height*v.c.SittingRatioMin-ratioTolerance {
		return fail(FieldSittingHeightM, KindRatio, CodeSittingRatio,
			FieldSittingHeightM, FieldHeightM, formatFloat(v.c.SittingRatioMin))
	}
	return ok()
}

func (v *MeasurementValidator) ArmSpanM(value string, mc MeasurementContext) Result {
	span, r := number(FieldArmSpanM, value, v.c.ArmSpan)
	if !r.Valid {
		return r
	}
	height, hr := number(FieldHeightM, mc.Record.HeightM, v.c.Height)
	if !hr.Valid {
		return ok()
	}
	ratio := span / height
	if ratio < v.c.ArmSpanRatio.Min-ratioTolerance || ratio > v.c.ArmSpanRatio.Max+ratioTolerance {
		return fail(FieldArmSpanM, KindRatio, CodeArmSpanRatio, FieldArmSpanM, FieldHeightM,
			formatFloat(v.c.ArmSpanRatio.Min), formatFloat(v.c.ArmSpanRatio.Max))
	}
	return ok()
}

func (v *MeasurementValidator) Notes(value string, _ MeasurementContext) Result {
	return notes(value, v.c.MeasurementNotesMax)
}

// Field runs the validator registered for name. Unknown names pass.
func (v *MeasurementValidator) Field(name string, mc MeasurementContext) Result {
	value, known := mc.Record.Value(name)
	if !known {
		return ok()
	}
	switch name {
	case FieldAthleteID:
		return v.AthleteID(value, mc)
	case FieldRecordDate:
		return v.RecordDate(value, mc)
	case FieldWeightKg:
		return v.WeightKg(value, mc)
	case FieldHeightM:
		return v.HeightM(value, mc)
	case FieldSittingHeightM:
		return v.SittingHeightM(value, mc)
	case FieldArmSpanM:
		return v.ArmSpanM(value, mc)
	case FieldNotes:
		return v.Notes(value, mc)
	}
	return ok()
}

func (v *MeasurementValidator) Validate(mc MeasurementContext) Errors {
	errs := make(Errors)
	for _, f := range MeasurementFields() {
		errs.add(v.Field(f, mc))
	}
	return errs
}

func validateAthleteID(value string, athletes AthleteSet) Result {
	if isEmpty(value) {
		return fail(FieldAthleteID, KindRequired, CodeRequired, FieldAthleteID)
	}
	id, err := parseInt(value)
	if err != nil {
		return fail(FieldAthleteID, KindType, CodeNotInteger, FieldAthleteID)
	}
	if id <= 0 {
		return fail(FieldAthleteID, KindRange, CodeNotPositive, FieldAthleteID)
	}
	if !athletes.Contains(id) {
		return fail(FieldAthleteID, KindRange, CodeNotEligible, FieldAthleteID, strconv.FormatInt(id, 10))
	}
	return ok()
}

// number runs the required, type and range checks shared by decimal fields.
func number(field, value string, r Range) (float64, Result) {
	if isEmpty(value) {
		return 0, fail(field, KindRequired, CodeRequired, field)
	}
	v, err := parseDecimal(value)
	if err != nil {
		return 0, fail(field, KindType, CodeNotNumber, field)
	}
	if v < r.Min {
		return v, fail(field, KindRange, CodeBelowMin, field, formatFloat(r.Min))
	}
	if v > r.Max {
		return v, fail(field, KindRange, CodeAboveMax, field, formatFloat(r.Max))
	}
	return v, ok()
}

func notes(value string, max int) Result {
	if max > 0 && utf8.RuneCountInString(value) > max {
		return fail(FieldNotes, KindRange, CodeTooLong, FieldNotes, strconv.Itoa(max))
	}
	return ok()
}
