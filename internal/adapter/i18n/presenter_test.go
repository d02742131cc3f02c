package i18n

import (
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNew(t *testing.T) {
	_, err := New("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)

	p, err := New("ES")
	require.NoError(t, err)
	assert.Equal(t, "es", p.Translator("xx").Locale())
}

func TestPresenter_Negotiate(t *testing.T) {
	p, err := New("en")
	require.NoError(t, err)

	tests := []struct {
		header string
		locale string
	}{
		{"", "en"},
		{"es-MX,es;q=0.9,en;q=0.5", "es"},
		{"en-GB", "en"},
		{"fr-FR", "en"},
		{";;garbage", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.locale, p.Negotiate(tt.header).Locale())
		})
	}
}

func TestPresenter_FieldError(t *testing.T) {
	p, err := New("en")
	require.NoError(t, err)
	en, es := p.Translator("en"), p.Translator("es")

	limits := assessment.DefaultConstraints()
	v := assessment.NewTrialValidator(limits)
	res := v.Result("40", assessment.TrialContext{Record: assessment.TrialInput{TrialType: "SPEED"}})
	require.False(t, res.Valid)
	fe := *res.Err

	assert.Equal(t, "Result for Speed must be at most 15 s", p.FieldError(en, fe))
	assert.Equal(t, "Resultado de Velocidad debe ser como máximo 15 s", p.FieldError(es, fe))

	server := assessment.ServerError(assessment.FieldRecordDate, "already recorded")
	assert.Equal(t, "already recorded", p.FieldError(es, server))

	unknown := assessment.FieldError{Code: "nope", Message: "fallback text"}
	assert.Equal(t, "fallback text", p.FieldError(es, unknown))

	msgs := p.Errors(es, assessment.Errors{
		assessment.FieldWeightKg: {
			Field:  assessment.FieldWeightKg,
			Kind:   assessment.KindRange,
			Code:   assessment.CodeAboveMax,
			Params: []string{assessment.FieldWeightKg, "200"},
		},
	})
	assert.Equal(t, map[string]string{assessment.FieldWeightKg: "Peso (kg) debe ser como máximo 200"}, msgs)
}

func TestPresenter_Metrics(t *testing.T) {
	p, err := New("en")
	require.NoError(t, err)

	m := assessment.DefaultConstraints().Metrics(80, 1.80, 0.95)
	got := p.Metrics(p.Translator("es"), m)
	assert.Equal(t, "Normal", got.BMIClass.Label)
	assert.Equal(t, "Mesocórmico", got.CormicClass.Label)
	assert.Equal(t, "tronco medio", got.CormicClass.Detail)
	assert.Equal(t, m.BMI, got.BMI)

	none := p.Classification(p.Translator("es"), assessment.DefaultConstraints().ClassifyBMI(0))
	assert.Equal(t, assessment.Sentinel, none.Label)
}
