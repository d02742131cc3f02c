package assessment

import (
	"github.com/pmezard/go-difflib/difflib"
	"strings"
	"time"
)

// suggestMinRatio is the similarity needed before a trial type is offered
// as a correction.
const suggestMinRatio = 0.6

type TrialContext struct {
	Record   TrialInput
	Today    time.Time
	Mode     Mode
	Athletes AthleteSet
}

type TrialValidator struct {
	c *Constraints
}

func NewTrialValidator(c *Constraints) *TrialValidator {
	return &TrialValidator{c: c}
}

func (v *TrialValidator) Constraints() *Constraints {
	return v.c
}

func (v *TrialValidator) AthleteID(value string, tc TrialContext) Result {
	if tc.Mode == ModeEdit {
		return ok()
	}
	return validateAthleteID(value, tc.Athletes)
}

func (v *TrialValidator) TrialType(value string, _ TrialContext) Result {
	if isEmpty(value) {
		return fail(FieldTrialType, KindRequired, CodeRequired, FieldTrialType)
	}
	if _, known := ParseTrialType(value); known {
		return ok()
	}
	choices := trialTypeList()
	if s := suggestTrialType(value); s != "" {
		return fail(FieldTrialType, KindType, CodeTrialTypeSuggest, FieldTrialType, choices, string(s))
	}
	return fail(FieldTrialType, KindType, CodeUnknownTrialType, FieldTrialType, choices)
}

// Result bounds depend on the trial type; when the type is unusable only
// positivity is checked.
func (v *TrialValidator) Result(value string, tc TrialContext) Result {
	if isEmpty(value) {
		return fail(FieldResult, KindRequired, CodeRequired, FieldResult)
	}
	result, err := parseDecimal(value)
	if err != nil {
		return fail(FieldResult, KindType, CodeNotNumber, FieldResult)
	}
	if result <= 0 {
		return fail(FieldResult, KindRange, CodeNotPositive, FieldResult)
	}
	t, known := ParseTrialType(tc.Record.TrialType)
	if !known {
		return ok()
	}
	limit, found := v.c.TrialLimit(t)
	if found && result > limit.Max {
		return fail(FieldResult, KindRange, CodeTrialMax, FieldResult, limit.Label, formatFloat(limit.Max), limit.Unit)
	}
	return ok()
}

func (v *TrialValidator) Notes(value string, _ TrialContext) Result {
	return notes(value, v.c.TrialNotesMax)
}

func (v *TrialValidator) Active(value string, _ TrialContext) Result {
	if _, err := parseActive(value); err != nil {
		return fail(FieldActive, KindType, CodeNotBool, FieldActive)
	}
	return ok()
}

func (v *TrialValidator) Field(name string, tc TrialContext) Result {
	value, known := tc.Record.Value(name)
	if !known {
		return ok()
	}
	switch name {
	case FieldAthleteID:
		return v.AthleteID(value, tc)
	case FieldTrialType:
		return v.TrialType(value, tc)
	case FieldResult:
		return v.Result(value, tc)
	case FieldNotes:
		return v.Notes(value, tc)
	case FieldActive:
		return v.Active(value, tc)
	}
	return ok()
}

func (v *TrialValidator) Validate(tc TrialContext) Errors {
	errs := make(Errors)
	for _, f := range TrialFields() {
		errs.add(v.Field(f, tc))
	}
	return errs
}

func trialTypeList() string {
	names := make([]string, 0, len(TrialTypes()))
	for _, t := range TrialTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func suggestTrialType(value string) TrialType {
	typed := strings.Split(strings.ToUpper(strings.TrimSpace(value)), "")
	var (
		best      TrialType
		bestRatio float64
	)
	for _, t := range TrialTypes() {
		ratio := difflib.NewMatcher(typed, strings.Split(string(t), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = t, ratio
		}
	}
	if bestRatio < suggestMinRatio {
		return ""
	}
	return best
}
