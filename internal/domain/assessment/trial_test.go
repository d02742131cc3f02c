package assessment

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func trialContext(in TrialInput) TrialContext {
	return TrialContext{Record: in, Today: testToday, Mode: ModeCreate}
}

func TestTrialResultBoundaries(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())

	tests := []struct {
		trial  TrialType
		result string
		valid  bool
	}{
		{TrialStrength, "300", true},
		{TrialStrength, "300.01", false},
		{TrialSpeed, "15", true},
		{TrialSpeed, "15.01", false},
		{TrialAgility, "25", true},
		{TrialAgility, "25.5", false},
		{TrialAgility, "0.01", true},
	}
	for _, tt := range tests {
		in := TrialInput{AthleteID: "3", TrialType: string(tt.trial), Result: tt.result}
		r := v.Result(tt.result, trialContext(in))
		assert.Equal(t, tt.valid, r.Valid, "%s %s", tt.trial, tt.result)
		if !tt.valid {
			assert.Equal(t, KindRange, r.Err.Kind)
		}
	}
}

func TestTrialMaxMessage(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())
	in := TrialInput{TrialType: "STRENGTH", Result: "301"}

	r := v.Result(in.Result, trialContext(in))
	require.False(t, r.Valid)
	assert.Equal(t, "result for Strength (jump) must be at most 300 cm", r.Message())
}

func TestTrialResultWithoutUsableType(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())

	in := TrialInput{AthleteID: "3", TrialType: "", Result: "999"}
	errs := v.Validate(trialContext(in))
	assert.Equal(t, []string{FieldTrialType}, errs.Fields())
}

func TestScenarioNegativeAgility(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())
	in := TrialInput{AthleteID: "3", TrialType: "AGILITY", Result: "-1"}

	errs := v.Validate(trialContext(in))
	require.Len(t, errs, 1)
	fe := errs[FieldResult]
	assert.Equal(t, KindRange, fe.Kind)
	assert.Equal(t, CodeNotPositive, fe.Code)
	assert.Equal(t, "result must be greater than 0", fe.Message)
}

func TestTrialType(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())
	tc := trialContext(TrialInput{})

	assert.True(t, v.TrialType("speed", tc).Valid)
	assert.True(t, v.TrialType(" Agility ", tc).Valid)
	assert.Equal(t, KindRequired, v.TrialType("", tc).Err.Kind)

	r := v.TrialType("SPEEED", tc)
	require.False(t, r.Valid)
	assert.Equal(t, KindType, r.Err.Kind)
	assert.Equal(t, CodeTrialTypeSuggest, r.Err.Code)
	assert.Equal(t, "trial_type must be one of STRENGTH, SPEED, AGILITY, did you mean SPEED?", r.Message())

	r = v.TrialType("swimming", tc)
	require.False(t, r.Valid)
	assert.Equal(t, CodeUnknownTrialType, r.Err.Code)
}

func TestTrialAthleteEligibility(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())
	tc := trialContext(TrialInput{})
	tc.Athletes = NewAthleteSet(4, 5)

	assert.True(t, v.AthleteID("4", tc).Valid)
	r := v.AthleteID("6", tc)
	require.False(t, r.Valid)
	assert.Equal(t, "athlete_id 6 does not belong to an actively enrolled athlete", r.Message())

	tc.Mode = ModeEdit
	assert.True(t, v.AthleteID("6", tc).Valid)
}

func TestTrialActiveFlag(t *testing.T) {
	v := NewTrialValidator(DefaultConstraints())
	tc := trialContext(TrialInput{})

	for _, s := range []string{"", "true", "false", "1", "0"} {
		assert.True(t, v.Active(s, tc).Valid, s)
	}
	assert.Equal(t, KindType, v.Active("maybe", tc).Err.Kind)
}

func TestTrialConversion(t *testing.T) {
	tr, err := TrialInput{AthleteID: "9", TrialType: "speed", Result: "4,8"}.Trial()
	require.NoError(t, err)
	assert.Equal(t, Trial{AthleteID: 9, Type: TrialSpeed, Result: 4.8, Active: true}, tr)

	back := TrialInputFrom(tr)
	assert.Equal(t, "SPEED", back.TrialType)
	assert.Equal(t, "4.8", back.Result)
	assert.Equal(t, "true", back.Active)
}
