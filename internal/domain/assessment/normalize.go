package assessment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Older records and clients use several spellings for the same field. The
// first alias present in the payload wins.
var (
	measurementAliases = map[string][]string{
		FieldAthleteID:      {"athlete_id", "athleteId", "athleteID", "athlete"},
		FieldRecordDate:     {"record_date", "recordDate", "date", "measured_at"},
		FieldWeightKg:       {"weight_kg", "weightKg", "weight"},
		FieldHeightM:        {"height_m", "heightM", "height"},
		FieldSittingHeightM: {"sitting_height_m", "sittingHeightM", "sitting_height"},
		FieldArmSpanM:       {"arm_span_m", "armSpanM", "arm_span", "wingspan"},
		FieldNotes:          {"notes", "note", "observations"},
	}

	trialAliases = map[string][]string{
		FieldAthleteID: {"athlete_id", "athleteId", "athleteID", "athlete"},
		FieldTrialType: {"trial_type", "trialType", "type", "test_type"},
		FieldResult:    {"result", "value", "score"},
		FieldNotes:     {"notes", "note", "observations"},
		FieldActive:    {"active", "is_active", "isActive", "status"},
	}
)

// NormalizeMeasurement maps a loosely typed payload onto the canonical raw
// record. It never validates.
func NormalizeMeasurement(payload map[string]any) MeasurementInput {
	in := MeasurementInput{}
	for _, f := range MeasurementFields() {
		raw, found := lookup(payload, measurementAliases[f])
		if !found {
			continue
		}
		p, _ := in.field(f)
		switch f {
		case FieldAthleteID:
			*p = athleteRef(raw)
		case FieldRecordDate:
			*p = dateValue(raw)
		default:
			*p = scalar(raw)
		}
	}
	in.NotesEdited = !isEmpty(in.Notes)
	return in
}

func NormalizeTrial(payload map[string]any) TrialInput {
	in := TrialInput{}
	for _, f := range TrialFields() {
		raw, found := lookup(payload, trialAliases[f])
		if !found {
			continue
		}
		p, _ := in.field(f)
		switch f {
		case FieldAthleteID:
			*p = athleteRef(raw)
		case FieldActive:
			*p = activeValue(raw)
		default:
			*p = scalar(raw)
		}
	}
	return in
}

// Present lists the canonical fields a payload actually carries, so partial
// updates only touch what the client sent.
func Present(payload map[string]any, trial bool) []string {
	aliases, fields := measurementAliases, MeasurementFields()
	if trial {
		aliases, fields = trialAliases, TrialFields()
	}
	var out []string
	for _, f := range fields {
		if _, found := lookup(payload, aliases[f]); found {
			out = append(out, f)
		}
	}
	return out
}

func lookup(payload map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// athleteRef accepts a bare id or an embedded athlete object.
func athleteRef(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if id, found := lookup(obj, []string{"id", "athlete_id", "athleteId"}); found {
			return scalar(id)
		}
		return ""
	}
	return scalar(v)
}

// dateValue keeps the calendar day of full timestamps.
func dateValue(v any) string {
	s := strings.TrimSpace(scalar(v))
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(DateLayout)
	}
	return s
}

func activeValue(v any) string {
	s := strings.TrimSpace(scalar(v))
	switch strings.ToLower(s) {
	case "active":
		return "true"
	case "inactive":
		return "false"
	}
	return s
}
