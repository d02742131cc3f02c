package assessment

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNotCanonical = errors.New("record is not valid")
)

const DateLayout = "2006-01-02"

const (
	FieldAthleteID      = "athlete_id"
	FieldRecordDate     = "record_date"
	FieldWeightKg       = "weight_kg"
	FieldHeightM        = "height_m"
	FieldSittingHeightM = "sitting_height_m"
	FieldArmSpanM       = "arm_span_m"
	FieldNotes          = "notes"

	FieldTrialType = "trial_type"
	FieldResult    = "result"
	FieldActive    = "active"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

type TrialType string

const (
	TrialStrength TrialType = "STRENGTH"
	TrialSpeed    TrialType = "SPEED"
	TrialAgility  TrialType = "AGILITY"
)

func TrialTypes() []TrialType {
	return []TrialType{TrialStrength, TrialSpeed, TrialAgility}
}

func ParseTrialType(s string) (TrialType, bool) {
	t := TrialType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range TrialTypes() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// AthleteSet is the domain of athlete ids the lookup collaborator allows.
// A nil set means any positive id is acceptable.
type AthleteSet map[int64]struct{}

func NewAthleteSet(ids ...int64) AthleteSet {
	s := make(AthleteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s AthleteSet) Contains(id int64) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

// Clock supplies the calendar day used by date validators.
type Clock interface {
	Today() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return StartOfDay(time.Now().In(loc))
}

type ClockFunc func() time.Time

func (f ClockFunc) Today() time.Time {
	return StartOfDay(f())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MeasurementInput holds the raw anthropometric form values.
type MeasurementInput struct {
	AthleteID      string `json:"athlete_id"`
	RecordDate     string `json:"record_date"`
	WeightKg       string `json:"weight_kg"`
	HeightM        string `json:"height_m"`
	SittingHeightM string `json:"sitting_height_m"`
	ArmSpanM       string `json:"arm_span_m"`
	Notes          string `json:"notes"`

	// NotesEdited is set once the user writes notes, which stops them from
	// being regenerated from the classifications.
	NotesEdited bool `json:"-"`
}

func MeasurementFields() []string {
	return []string{
		FieldAthleteID, FieldRecordDate, FieldWeightKg, FieldHeightM,
		FieldSittingHeightM, FieldArmSpanM, FieldNotes,
	}
}

func (in *MeasurementInput) field(name string) (*string, bool) {
	switch name {
	case FieldAthleteID:
		return &in.AthleteID, true
	case FieldRecordDate:
		return &in.RecordDate, true
	case FieldWeightKg:
		return &in.WeightKg, true
	case FieldHeightM:
		return &in.HeightM, true
	case FieldSittingHeightM:
		return &in.SittingHeightM, true
	case FieldArmSpanM:
		return &in.ArmSpanM, true
	case FieldNotes:
		return &in.Notes, true
	}
	return nil, false
}

func (in MeasurementInput) Value(name string) (string, bool) {
	p, ok := in.field(name)
	if !ok {
		return "", false
	}
	return *p, true
}

// Anthropometry is the typed form of a measurement record.
type Anthropometry struct {
	AthleteID      int64
	RecordDate     time.Time
	WeightKg       float64
	HeightM        float64
	SittingHeightM float64
	ArmSpanM       float64
	Notes          string
}

// Anthropometry coerces the raw values. Call it after validation passed.
func (in MeasurementInput) Anthropometry(loc *time.Location) (a Anthropometry, err error) {
	if a.AthleteID, err = parseInt(in.AthleteID); err != nil {
		return a, canonicalErr(FieldAthleteID, err)
	}
	if a.RecordDate, err = parseDate(in.RecordDate, loc); err != nil {
		return a, canonicalErr(FieldRecordDate, err)
	}
	if a.WeightKg, err = parseDecimal(in.WeightKg); err != nil {
		return a, canonicalErr(FieldWeightKg, err)
	}
	if a.HeightM, err = parseDecimal(in.HeightM); err != nil {
		return a, canonicalErr(FieldHeightM, err)
	}
	if a.SittingHeightM, err = parseDecimal(in.SittingHeightM); err != nil {
		return a, canonicalErr(FieldSittingHeightM, err)
	}
	if a.ArmSpanM, err = parseDecimal(in.ArmSpanM); err != nil {
		return a, canonicalErr(FieldArmSpanM, err)
	}
	a.Notes = strings.TrimSpace(in.Notes)
	return a, nil
}

// TrialInput holds the raw physical trial form values.
type TrialInput struct {
	AthleteID string `json:"athlete_id"`
	TrialType string `json:"trial_type"`
	Result    string `json:"result"`
	Notes     string `json:"notes"`
	Active    string `json:"active"`
}

func TrialFields() []string {
	return []string{FieldAthleteID, FieldTrialType, FieldResult, FieldNotes, FieldActive}
}

func (in *TrialInput) field(name string) (*string, bool) {
	switch name {
	case FieldAthleteID:
		return &in.AthleteID, true
	case FieldTrialType:
		return &in.TrialType, true
	case FieldResult:
		return &in.Result, true
	case FieldNotes:
		return &in.Notes, true
	case FieldActive:
		return &in.Active, true
	}
	return nil, false
}

func (in TrialInput) Value(name string) (string, bool) {
	p, ok := in.field(name)
	if !ok {
		return "", false
	}
	return *p, true
}

type Trial struct {
	AthleteID int64
	Type      TrialType
	Result    float64
	Notes     string
	Active    bool
}

func (in TrialInput) Trial() (t Trial, err error) {
	if t.AthleteID, err = parseInt(in.AthleteID); err != nil {
		return t, canonicalErr(FieldAthleteID, err)
	}
	var known bool
	if t.Type, known = ParseTrialType(in.TrialType); !known {
		return t, canonicalErr(FieldTrialType, fmt.Errorf("unknown trial type %q", in.TrialType))
	}
	if t.Result, err = parseDecimal(in.Result); err != nil {
		return t, canonicalErr(FieldResult, err)
	}
	if t.Active, err = parseActive(in.Active); err != nil {
		return t, canonicalErr(FieldActive, err)
	}
	t.Notes = strings.TrimSpace(in.Notes)
	return t, nil
}

func TrialInputFrom(t Trial) TrialInput {
	return TrialInput{
		AthleteID: strconv.FormatInt(t.AthleteID, 10),
		TrialType: string(t.Type),
		Result:    formatFloat(t.Result),
		Notes:     t.Notes,
		Active:    strconv.FormatBool(t.Active),
	}
}

func canonicalErr(field string, err error) error {
	return errors.Join(fmt.Errorf("%s: %w", field, err), ErrNotCanonical)
}

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// parseDecimal accepts a dot or a single comma as decimal separator and
// rejects NaN and infinities.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	// ParseFloat would also take hex floats such as 0x1p6
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("not a decimal number %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

func parseActive(s string) (bool, error) {
	if isEmpty(s) {
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
