package assessment

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ratio bounds a quotient of two fields, inclusive.
type Ratio struct {
	Min float64
	Max float64
}

type TrialLimit struct {
	Max   float64
	Unit  string
	Label string
}

// BMIBands holds the lower edges of the Normal and Overweight bands.
type BMIBands struct {
	Normal     float64
	Overweight float64
}

// CormicBands holds the closed interval classified as Mesocormic.
type CormicBands struct {
	MesoMin float64
	MesoMax float64
}

// Constraints is the single source of every numeric threshold used by
// validators and calculators. Treat it as immutable once built.
type Constraints struct {
	Weight        Range
	Height        Range
	SittingHeight Range
	ArmSpan       Range

	// SittingRatioMin is the minimum sitting height / height quotient.
	// The maximum is implied by sitting height never exceeding height.
	SittingRatioMin float64
	ArmSpanRatio    Ratio

	RecordMaxAgeYears   int
	MeasurementNotesMax int
	TrialNotesMax       int

	Trials map[TrialType]TrialLimit

	BMI    BMIBands
	Cormic CormicBands
}

func DefaultConstraints() *Constraints {
	return &Constraints{
		Weight:          Range{Min: 30, Max: 200},
		Height:          Range{Min: 1.20, Max: 2.50},
		SittingHeight:   Range{Min: 0.50, Max: 2.00},
		ArmSpan:         Range{Min: 1.00, Max: 3.00},
		SittingRatioMin: 0.40,
		ArmSpanRatio:    Ratio{Min: 0.85, Max: 1.20},

		RecordMaxAgeYears:   5,
		MeasurementNotesMax: 500,
		TrialNotesMax:       200,

		Trials: map[TrialType]TrialLimit{
			TrialStrength: {Max: 300, Unit: "cm", Label: "Strength (jump)"},
			TrialSpeed:    {Max: 15, Unit: "s", Label: "Speed"},
			TrialAgility:  {Max: 25, Unit: "s", Label: "Agility"},
		},

		BMI:    BMIBands{Normal: 18.5, Overweight: 25},
		Cormic: CormicBands{MesoMin: 50, MesoMax: 55},
	}
}

// With returns a copy of c with the given overrides applied. The trial table
// is copied so the receiver stays untouched.
func (c *Constraints) With(opts ...func(*Constraints)) *Constraints {
	cp := *c
	cp.Trials = make(map[TrialType]TrialLimit, len(c.Trials))
	for k, v := range c.Trials {
		cp.Trials[k] = v
	}
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (c *Constraints) TrialLimit(t TrialType) (TrialLimit, bool) {
	l, ok := c.Trials[t]
	return l, ok
}
