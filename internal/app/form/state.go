package form

type State int

const (
	Pristine State = iota
	Editing
	Invalid
	Valid
	Submitting
	Submitted
	SubmitFailed
)

func (s State) String() string {
	switch s {
	case Pristine:
		return "pristine"
	case Editing:
		return "editing"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case SubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}
