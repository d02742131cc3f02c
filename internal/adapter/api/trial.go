package api

import (
	trialstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/trials"
	trialservice "github.com/burenotti/hoops_backend/internal/app/trial"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountTrials() {
	loginRequired := s.LoginRequired()
	routes := s.handler.Group("/trials", loginRequired)

	routes.POST("/validate", s.ValidateTrial)
	routes.POST("", s.CreateTrial)
	routes.GET("/:trial_id", s.GetTrial)
	routes.PUT("/:trial_id", s.UpdateTrial)
	routes.PATCH("/:trial_id/active", s.SetTrialActive)

	s.handler.GET("/athletes/:athlete_id/trials", s.ListTrials, loginRequired)
}

func (s *Server) getTrialUoW() *unitofwork.UnitOfWork[*trialservice.AtomicContext] {
	return unitofwork.New[*trialservice.AtomicContext](
		s.db,
		trialservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Trial struct {
	TrialID    string    `json:"trial_id"`
	AthleteID  int64     `json:"athlete_id"`
	TrialType  string    `json:"trial_type"`
	Result     float64   `json:"result"`
	Unit       string    `json:"unit,omitempty"`
	Notes      string    `json:"notes"`
	Active     bool      `json:"active"`
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Server) trialResponse(t *trial.Trial) Trial {
	limit, _ := s.trialService.Constraints().TrialLimit(t.Type)
	return Trial{
		TrialID:    t.TrialID,
		AthleteID:  t.AthleteID,
		TrialType:  string(t.Type),
		Result:     t.Result,
		Unit:       limit.Unit,
		Notes:      t.Notes,
		Active:     t.Active,
		RecordedBy: t.RecordedBy,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

type ValidateTrialResponse struct {
	Valid       bool                  `json:"valid"`
	Record      assessment.TrialInput `json:"record"`
	FieldErrors map[string]string     `json:"field_errors"`
}

func (s *Server) ValidateTrial(c echo.Context) error {
	var req ValidateRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, "bad request")
	}
	if err := s.validator.Struct(req); err != nil {
		return JsonError(c, http.StatusBadRequest, "mode must be create or edit")
	}
	payload, err := s.bindPayload(c)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	report, err := s.trialService.Validate(c.Request().Context(), s.getTrialUoW(), payload, req.mode())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ValidateTrialResponse{
		Valid:       report.Valid(),
		Record:      report.Record,
		FieldErrors: s.presenter.Errors(s.translator(c), report.Errors),
	})
}

func (s *Server) CreateTrial(c echo.Context) error {
	payload, err := s.bindPayload(c)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	t, err := s.trialService.Create(c.Request().Context(), s.getTrialUoW(), currentUser(c).UserID, payload)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, s.trialResponse(t))
}

type GetTrialRequest struct {
	TrialID string `param:"trial_id" validate:"required"`
}

func (s *Server) GetTrial(c echo.Context) error {
	var req GetTrialRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	t, err := s.trialService.Get(c.Request().Context(), s.getTrialUoW(), req.TrialID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.trialResponse(t))
}

func (s *Server) UpdateTrial(c echo.Context) error {
	id := c.Param("trial_id")
	payload, err := s.bindPayload(c)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	t, err := s.trialService.Update(c.Request().Context(), s.getTrialUoW(), id, payload)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.trialResponse(t))
}

type SetTrialActiveRequest struct {
	TrialID string `param:"trial_id" validate:"required"`
	Active  *bool  `json:"active" validate:"required"`
}

func (s *Server) SetTrialActive(c echo.Context) error {
	var req SetTrialActiveRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	t, err := s.trialService.SetActive(c.Request().Context(), s.getTrialUoW(), req.TrialID, *req.Active)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.trialResponse(t))
}

type ListTrialsRequest struct {
	ListByAthleteRequest
	TrialType  string `query:"type"`
	ActiveOnly bool   `query:"active_only"`
}

type ListTrialsResponse struct {
	Trials []Trial `json:"trials"`
}

func (s *Server) ListTrials(c echo.Context) error {
	var req ListTrialsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	filter := trialstorage.Filter{ActiveOnly: req.ActiveOnly}
	if req.TrialType != "" {
		tt, ok := assessment.ParseTrialType(req.TrialType)
		if !ok {
			return JsonError(c, http.StatusBadRequest, "unknown trial type")
		}
		filter.Type = tt
	}

	ctx := c.Request().Context()
	list, err := s.trialService.ListByAthlete(ctx, s.getTrialUoW(), req.AthleteID, filter, req.Limit, req.Offset)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListTrialsResponse{
		Trials: lo.Map(list, func(t *trial.Trial, _ int) Trial {
			return s.trialResponse(t)
		}),
	})
}
