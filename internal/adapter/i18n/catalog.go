package i18n

import (
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	ut "github.com/go-playground/universal-translator"
)

type catalog struct {
	messages map[string]string
	terms    map[string]string
	classes  map[string]string
}

func (c catalog) register(t ut.Translator) error {
	for key, text := range c.messages {
		if err := t.Add(key, text, true); err != nil {
			return err
		}
	}
	for key, text := range c.terms {
		if err := t.Add(termPrefix+key, text, true); err != nil {
			return err
		}
	}
	for key, text := range c.classes {
		if err := t.Add(classPrefix+key, text, true); err != nil {
			return err
		}
	}
	return nil
}

var catalogs = map[string]catalog{
	"en": {
		messages: assessment.DefaultMessages(),
		terms: map[string]string{
			assessment.FieldAthleteID:      "Athlete",
			assessment.FieldRecordDate:     "Record date",
			assessment.FieldWeightKg:       "Weight (kg)",
			assessment.FieldHeightM:        "Height (m)",
			assessment.FieldSittingHeightM: "Sitting height (m)",
			assessment.FieldArmSpanM:       "Arm span (m)",
			assessment.FieldNotes:          "Notes",
			assessment.FieldTrialType:      "Trial type",
			assessment.FieldResult:         "Result",
			assessment.FieldActive:         "Active",
		},
		classes: map[string]string{
			assessment.ClassInsufficient:                "Insufficient",
			assessment.ClassNormal:                      "Normal",
			assessment.ClassOverweight:                  "Overweight",
			assessment.ClassBrachycormic:                "Brachycormic",
			assessment.ClassBrachycormic + detailSuffix: "short trunk",
			assessment.ClassMesocormic:                  "Mesocormic",
			assessment.ClassMesocormic + detailSuffix:   "average trunk",
			assessment.ClassMacroskelic:                 "Macroskelic",
			assessment.ClassMacroskelic + detailSuffix:  "long trunk",
		},
	},
	"es": {
		messages: map[string]string{
			assessment.CodeRequired:           "{0} es obligatorio",
			assessment.CodeNotNumber:          "{0} debe ser un número",
			assessment.CodeNotInteger:         "{0} debe ser un número entero",
			assessment.CodeNotDate:            "{0} debe ser una fecha con formato AAAA-MM-DD",
			assessment.CodeNotBool:            "{0} debe ser verdadero o falso",
			assessment.CodeUnknownTrialType:   "{0} debe ser uno de {1}",
			assessment.CodeTrialTypeSuggest:   "{0} debe ser uno de {1}, ¿quisiste decir {2}?",
			assessment.CodeBelowMin:           "{0} debe ser como mínimo {1}",
			assessment.CodeAboveMax:           "{0} debe ser como máximo {1}",
			assessment.CodeNotPositive:        "{0} debe ser mayor que 0",
			assessment.CodeFutureDate:         "{0} no puede ser posterior a {1}",
			assessment.CodeTooOld:             "{0} no puede ser anterior a {1}",
			assessment.CodeNotEligible:        "{0} {1} no corresponde a un atleta con inscripción activa",
			assessment.CodeTooLong:            "{0} debe tener como máximo {1} caracteres",
			assessment.CodeTrialMax:           "{0} de {1} debe ser como máximo {2} {3}",
			assessment.CodeSittingAboveHeight: "{0} no puede superar {1}",
			assessment.CodeSittingRatio:       "{0} debe ser al menos {2} veces {1}",
			assessment.CodeArmSpanRatio:       "{0} dividido por {1} debe estar entre {2} y {3}",
			assessment.CodeServer:             "{0}",
			assessment.CodeTransport:          "{0}",
		},
		terms: map[string]string{
			assessment.FieldAthleteID:      "Atleta",
			assessment.FieldRecordDate:     "Fecha de registro",
			assessment.FieldWeightKg:       "Peso (kg)",
			assessment.FieldHeightM:        "Estatura (m)",
			assessment.FieldSittingHeightM: "Talla sentado (m)",
			assessment.FieldArmSpanM:       "Envergadura (m)",
			assessment.FieldNotes:          "Notas",
			assessment.FieldTrialType:      "Tipo de prueba",
			assessment.FieldResult:         "Resultado",
			assessment.FieldActive:         "Activo",
			"Strength (jump)":              "Fuerza (salto)",
			"Speed":                        "Velocidad",
			"Agility":                      "Agilidad",
		},
		classes: map[string]string{
			assessment.ClassInsufficient:                "Insuficiente",
			assessment.ClassNormal:                      "Normal",
			assessment.ClassOverweight:                  "Sobrepeso",
			assessment.ClassBrachycormic:                "Braquicórmico",
			assessment.ClassBrachycormic + detailSuffix: "tronco corto",
			assessment.ClassMesocormic:                  "Mesocórmico",
			assessment.ClassMesocormic + detailSuffix:   "tronco medio",
			assessment.ClassMacroskelic:                 "Macroesquélico",
			assessment.ClassMacroskelic + detailSuffix:  "tronco largo",
		},
	},
}
