package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/i18n"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	"github.com/burenotti/hoops_backend/internal/adapter/telemetry"
	"github.com/burenotti/hoops_backend/internal/app/auth"
	enrollmentservice "github.com/burenotti/hoops_backend/internal/app/enrollment"
	groupservice "github.com/burenotti/hoops_backend/internal/app/group"
	measurementservice "github.com/burenotti/hoops_backend/internal/app/measurement"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	profileapp "github.com/burenotti/hoops_backend/internal/app/profile"
	trialservice "github.com/burenotti/hoops_backend/internal/app/trial"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type client struct {
	t     *testing.T
	srv   *Server
	token string
	lang  string
}

func newClient(t *testing.T) *client {
	t.Helper()

	db := storagetest.Open(t)
	bus := messagebus.New(nil)
	t.Cleanup(bus.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := assessment.ClockFunc(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	})

	reg := prometheus.NewRegistry()
	submissions := telemetry.NewSubmissions(reg)
	constraints := assessment.DefaultConstraints()

	presenter, err := i18n.New("en")
	require.NoError(t, err)

	authorizer := &auth.Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "test-secret",
		AccessTokenTTL:   time.Hour,
		AuthorizationTTL: time.Hour,
	}

	srv := NewServer(
		Logger(logger),
		DBContext(db),
		MessageBus(bus),
		Presenter(presenter),
		MetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		AuthService(auth.NewService(authorizer, logger)),
		ProfileService(profileapp.New(logger)),
		GroupService(groupservice.New(logger)),
		EnrollmentService(enrollmentservice.New(logger)),
		MeasurementService(measurementservice.New(constraints, time.UTC, submissions, logger).WithClock(today)),
		TrialService(trialservice.New(constraints, time.UTC, submissions, logger).WithClock(today)),
	)
	return &client{t: t, srv: srv}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}

	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signIn registers a coach and leaves the client authenticated as them.
func (c *client) signIn(email string) string {
	c.t.Helper()

	userID := uuid.NewString()
	rec := c.do(http.MethodPost, "/auth/sign-up", map[string]any{
		"user_id":  userID,
		"email":    email,
		"password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/auth/login", map[string]any{"email": email, "password": "password123"})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	c.token = decode[tokensResp](c.t, rec).AccessToken

	rec = c.do(http.MethodPost, "/coaches/"+userID, map[string]any{
		"first_name":       "Pat",
		"last_name":        "Riley",
		"years_experience": 10,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return userID
}

// enrolledAthlete registers an athlete in a fresh group of the current coach.
func (c *client) enrolledAthlete(code string) int64 {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/athletes", map[string]any{
		"first_name":   "Luis",
		"last_name":    "Mora",
		"birth_date":   "2008-01-02",
		"student_code": code,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	athlete := decode[Athlete](c.t, rec)

	rec = c.do(http.MethodPost, "/groups", map[string]any{"name": "U17 " + code, "season": "2024"})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[Group](c.t, rec)

	rec = c.do(http.MethodPost, "/groups/"+g.GroupID+"/enrollments", map[string]any{"athlete_id": athlete.AthleteID})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return athlete.AthleteID
}

func TestAuthFlow(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/profiles/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/auth/sign-up", map[string]any{"user_id": "not-a-uuid", "email": "x@club.test", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[JsonErrorModel](t, rec).Message, "user_id")

	userID := c.signIn("coach@club.test")

	rec = c.do(http.MethodPost, "/auth/sign-up", map[string]any{"user_id": uuid.NewString(), "email": "coach@club.test", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodGet, "/profiles/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[CoachResponse](t, rec)
	assert.Equal(t, userID, me.UserID)
	assert.Equal(t, "coach", me.Type)

	rec = c.do(http.MethodPost, "/coaches/"+uuid.NewString(), map[string]any{"first_name": "A", "last_name": "B"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/profiles/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeasurements(t *testing.T) {
	c := newClient(t)
	c.signIn("coach@club.test")
	athleteID := c.enrolledAthlete("S-1")

	payload := map[string]any{
		"athlete_id":       athleteID,
		"record_date":      "2024-06-01",
		"weight_kg":        500,
		"height_m":         1.80,
		"sitting_height_m": "0,95",
		"arm_span_m":       1.85,
	}

	c.lang = "es-ES,es;q=0.9"
	rec := c.do(http.MethodPost, "/measurements", payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	rejected := decode[RejectionModel](t, rec)
	assert.Equal(t, msgRejected, rejected.Message)
	assert.Equal(t, "Peso (kg) debe ser como máximo 200", rejected.FieldErrors[assessment.FieldWeightKg])

	payload["weight_kg"] = 80
	c.lang = ""
	rec = c.do(http.MethodPost, "/measurements", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[Measurement](t, rec)
	assert.Equal(t, "2024-06-01", m.RecordDate)
	assert.Equal(t, "Normal", m.Metrics.BMIClass.Label)
	assert.Equal(t, "Mesocormic", m.Metrics.CormicClass.Label)

	rec = c.do(http.MethodPost, "/measurements", payload)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[RejectionModel](t, rec).FieldErrors, assessment.FieldRecordDate)

	rec = c.do(http.MethodPut, "/measurements/"+m.MeasurementID, map[string]any{"weight_kg": 95})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Overweight", decode[Measurement](t, rec).Metrics.BMIClass.Label)

	c.lang = "es"
	rec = c.do(http.MethodGet, fmt.Sprintf("/athletes/%d/measurements", athleteID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListMeasurementsResponse](t, rec)
	require.Len(t, list.Measurements, 1)
	assert.Equal(t, "Sobrepeso", list.Measurements[0].Metrics.BMIClass.Label)

	rec = c.do(http.MethodGet, "/measurements/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/measurements/validate", map[string]any{
		"weight_kg":        80,
		"height_m":         1.8,
		"sitting_height_m": 1.9,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ValidateMeasurementResponse](t, rec)
	assert.False(t, report.Valid)
	assert.Contains(t, report.FieldErrors, assessment.FieldSittingHeightM)
	assert.Equal(t, "Atleta es obligatorio", report.FieldErrors[assessment.FieldAthleteID])
	assert.Equal(t, "Normal", report.Metrics.BMIClass.Label)

	rec = c.do(http.MethodPost, "/measurements/validate?mode=bogus", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hoops_submissions_total{kind="measurement",outcome="accepted"} 2`)
	assert.Contains(t, body, `hoops_submissions_total{kind="measurement",outcome="rejected"} 2`)
	assert.Contains(t, body, `hoops_field_errors_total{field="weight_kg",kind="measurement"} 1`)
}

func TestTrials(t *testing.T) {
	c := newClient(t)
	c.signIn("coach@club.test")
	athleteID := c.enrolledAthlete("S-1")

	rec := c.do(http.MethodGet, "/athletes/eligible", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	eligible := decode[EligibleAthletesResponse](t, rec)
	require.Len(t, eligible.Athletes, 1)
	assert.Equal(t, athleteID, eligible.Athletes[0].AthleteID)

	rec = c.do(http.MethodPost, "/trials", map[string]any{
		"athlete_id": athleteID,
		"trial_type": "speed",
		"result":     "12,4",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode[Trial](t, rec)
	assert.Equal(t, "SPEED", tr.TrialType)
	assert.Equal(t, "s", tr.Unit)
	assert.True(t, tr.Active)

	rec = c.do(http.MethodPost, "/trials", map[string]any{
		"athlete_id": athleteID,
		"trial_type": "agilty",
		"result":     10,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, strings.Contains(decode[RejectionModel](t, rec).FieldErrors[assessment.FieldTrialType], "AGILITY"))

	rec = c.do(http.MethodPatch, "/trials/"+tr.TrialID+"/active", map[string]any{"active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[Trial](t, rec).Active)

	rec = c.do(http.MethodGet, fmt.Sprintf("/athletes/%d/trials?type=speed&active_only=true", athleteID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ListTrialsResponse](t, rec).Trials)

	rec = c.do(http.MethodGet, fmt.Sprintf("/athletes/%d/trials?type=speed", athleteID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ListTrialsResponse](t, rec).Trials, 1)

	rec = c.do(http.MethodGet, fmt.Sprintf("/athletes/%d/trials?type=swim", athleteID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPatch, "/trials/"+tr.TrialID+"/active", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
