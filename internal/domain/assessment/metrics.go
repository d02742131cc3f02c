package assessment

import (
	"fmt"
	"math"
	"strings"
)

// Sentinel is the label shown when a metric cannot be computed yet.
const Sentinel = "—"

const (
	ClassNone         = "none"
	ClassInsufficient = "bmi.insufficient"
	ClassNormal       = "bmi.normal"
	ClassOverweight   = "bmi.overweight"
	ClassBrachycormic = "cormic.brachycormic"
	ClassMesocormic   = "cormic.mesocormic"
	ClassMacroskelic  = "cormic.macroskelic"
)

type Classification struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

func (c Classification) IsSentinel() bool {
	return c.Code == ClassNone
}

var noClass = Classification{Code: ClassNone, Label: Sentinel}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ComputeBMI returns weight / height². Out of domain input yields 0.
func ComputeBMI(weightKg, heightM float64) float64 {
	if !positiveFinite(weightKg) || !positiveFinite(heightM) {
		return 0
	}
	bmi := weightKg / (heightM * heightM)
	if !positiveFinite(bmi) {
		return 0
	}
	return bmi
}

// ComputeCormicIndex returns sitting height / height × 100. Out of domain
// input yields 0.
func ComputeCormicIndex(sittingHeightM, heightM float64) float64 {
	if !positiveFinite(sittingHeightM) || !positiveFinite(heightM) {
		return 0
	}
	idx := sittingHeightM / heightM * 100
	if !positiveFinite(idx) {
		return 0
	}
	return idx
}

func (c *Constraints) ClassifyBMI(value float64) Classification {
	switch {
	case !positiveFinite(value):
		return noClass
	case value < c.BMI.Normal:
		return Classification{Code: ClassInsufficient, Label: "Insufficient"}
	case value < c.BMI.Overweight:
		return Classification{Code: ClassNormal, Label: "Normal"}
	default:
		return Classification{Code: ClassOverweight, Label: "Overweight"}
	}
}

func (c *Constraints) ClassifyCormicIndex(value float64) Classification {
	switch {
	case !positiveFinite(value):
		return noClass
	case value < c.Cormic.MesoMin:
		return Classification{Code: ClassBrachycormic, Label: "Brachycormic", Detail: "short trunk"}
	case value <= c.Cormic.MesoMax:
		return Classification{Code: ClassMesocormic, Label: "Mesocormic", Detail: "average trunk"}
	default:
		return Classification{Code: ClassMacroskelic, Label: "Macroskelic", Detail: "long trunk"}
	}
}

// Metrics are display-only values derived from a measurement.
type Metrics struct {
	BMI         float64        `json:"bmi"`
	BMIClass    Classification `json:"bmi_class"`
	CormicIndex float64        `json:"cormic_index"`
	CormicClass Classification `json:"cormic_class"`
}

func (c *Constraints) Metrics(weightKg, heightM, sittingHeightM float64) Metrics {
	bmi := ComputeBMI(weightKg, heightM)
	cormic := ComputeCormicIndex(sittingHeightM, heightM)
	return Metrics{
		BMI:         bmi,
		BMIClass:    c.ClassifyBMI(bmi),
		CormicIndex: cormic,
		CormicClass: c.ClassifyCormicIndex(cormic),
	}
}

// MetricsOf computes metrics from raw values; anything that does not parse
// counts as 0 and ends up as the sentinel.
func (c *Constraints) MetricsOf(in MeasurementInput) Metrics {
	w, _ := parseDecimal(in.WeightKg)
	h, _ := parseDecimal(in.HeightM)
	s, _ := parseDecimal(in.SittingHeightM)
	return c.Metrics(w, h, s)
}

// Summary renders the classifications as the default notes text.
func (m Metrics) Summary() string {
	var parts []string
	if !m.BMIClass.IsSentinel() {
		parts = append(parts, fmt.Sprintf("BMI %.2f (%s)", m.BMI, m.BMIClass.Label))
	}
	if !m.CormicClass.IsSentinel() {
		parts = append(parts, fmt.Sprintf("Cormic index %.2f (%s, %s)",
			m.CormicIndex, m.CormicClass.Label, m.CormicClass.Detail))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}
