package trial

import (
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func spec() assessment.Trial {
	return assessment.Trial{
		AthleteID: 3,
		Type:      assessment.TrialSpeed,
		Result:    12.5,
		Active:    true,
	}
}

func types(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type())
	}
	return out
}

func TestTrial_Update(t *testing.T) {
	tr := New("t-1", spec(), "coach-1")
	assert.Equal(t, []string{EventRecorded}, types(tr.PopEvents()))
	assert.Equal(t, spec(), tr.Spec())

	require.NoError(t, tr.Update(spec()))
	assert.Empty(t, tr.PopEvents())

	s := spec()
	s.Result = 11.9
	s.Active = false
	require.NoError(t, tr.Update(s))
	assert.Equal(t, []string{EventUpdated, EventActiveSet}, types(tr.PopEvents()))
	assert.False(t, tr.Active)

	s.Type = assessment.TrialAgility
	assert.ErrorIs(t, tr.Update(s), ErrImmutableChanged)
}

func TestTrial_SetActive(t *testing.T) {
	tr := New("t-1", spec(), "coach-1")
	tr.PopEvents()

	tr.SetActive(true)
	assert.Empty(t, tr.PopEvents())

	tr.SetActive(false)
	events := tr.PopEvents()
	require.Len(t, events, 1)
	changed := events[0].(ActiveChangedEvent)
	assert.Equal(t, "t-1", changed.TrialID)
	assert.False(t, changed.Active)
}
