package api

import (
	measurementservice "github.com/burenotti/hoops_backend/internal/app/measurement"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountMeasurements() {
	loginRequired := s.LoginRequired()
	routes := s.handler.Group("/measurements", loginRequired)

	routes.POST("/validate", s.ValidateMeasurement)
	routes.POST("", s.CreateMeasurement)
	routes.GET("/:measurement_id", s.GetMeasurement)
	routes.PUT("/:measurement_id", s.UpdateMeasurement)

	s.handler.GET("/athletes/:athlete_id/measurements", s.ListMeasurements, loginRequired)
}

func (s *Server) getMeasurementUoW() *unitofwork.UnitOfWork[*measurementservice.AtomicContext] {
	return unitofwork.New[*measurementservice.AtomicContext](
		s.db,
		measurementservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Measurement struct {
	MeasurementID  string             `json:"measurement_id"`
	AthleteID      int64              `json:"athlete_id"`
	RecordDate     string             `json:"record_date"`
	WeightKg       float64            `json:"weight_kg"`
	HeightM        float64            `json:"height_m"`
	SittingHeightM float64            `json:"sitting_height_m"`
	ArmSpanM       float64            `json:"arm_span_m"`
	Notes          string             `json:"notes"`
	RecordedBy     string             `json:"recorded_by"`
	Metrics        assessment.Metrics `json:"metrics"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (s *Server) measurementResponse(t ut.Translator, m *measurement.Measurement) Measurement {
	metrics := s.measurementService.Constraints().Metrics(m.WeightKg, m.HeightM, m.SittingHeightM)
	return Measurement{
		MeasurementID:  m.MeasurementID,
		AthleteID:      m.AthleteID,
		RecordDate:     m.RecordDate.Format(assessment.DateLayout),
		WeightKg:       m.WeightKg,
		HeightM:        m.HeightM,
		SittingHeightM: m.SittingHeightM,
		ArmSpanM:       m.ArmSpanM,
		Notes:          m.Notes,
		RecordedBy:     m.RecordedBy,
		Metrics:        s.presenter.Metrics(t, metrics),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type ValidateRequest struct {
	Mode string `query:"mode" validate:"omitempty,oneof=create edit"`
}

func (r ValidateRequest) mode() assessment.Mode {
	if r.Mode == "edit" {
		return assessment.ModeEdit
	}
	return assessment.ModeCreate
}

type ValidateMeasurementResponse struct {
	Valid       bool                        `json:"valid"`
	Record      assessment.MeasurementInput `json:"record"`
	FieldErrors map[string]string           `json:"field_errors"`
	Metrics     assessment.Metrics          `json:"metrics"`
}

// ValidateMeasurement is the live check run while the form is being
// filled in. Nothing is stored.
func (s *Server) ValidateMeasurement(c echo.Context) error {
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

	t := s.translator(c)
	report := s.measurementService.Validate(payload, req.mode())
	return c.JSON(http.StatusOK, ValidateMeasurementResponse{
		Valid:       report.Valid(),
		Record:      report.Record,
		FieldErrors: s.presenter.Errors(t, report.Errors),
		Metrics:     s.presenter.Metrics(t, report.Metrics),
	})
}

func (s *Server) CreateMeasurement(c echo.Context) error {
	payload, err := s.bindPayload(c)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	m, err := s.measurementService.Create(ctx, s.getMeasurementUoW(), currentUser(c).UserID, payload)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, s.measurementResponse(s.translator(c), m))
}

type GetMeasurementRequest struct {
	MeasurementID string `param:"measurement_id" validate:"required"`
}

func (s *Server) GetMeasurement(c echo.Context) error {
	var req GetMeasurementRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	m, err := s.measurementService.Get(c.Request().Context(), s.getMeasurementUoW(), req.MeasurementID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.measurementResponse(s.translator(c), m))
}

func (s *Server) UpdateMeasurement(c echo.Context) error {
	id := c.Param("measurement_id")
	payload, err := s.bindPayload(c)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	m, err := s.measurementService.Update(c.Request().Context(), s.getMeasurementUoW(), id, payload)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.measurementResponse(s.translator(c), m))
}

type ListByAthleteRequest struct {
	AthleteID int64 `param:"athlete_id" validate:"required,gt=0"`
	Limit     int   `query:"limit" validate:"gte=0,lte=1000"`
	Offset    int   `query:"offset" validate:"gte=0"`
}

type ListMeasurementsResponse struct {
	Measurements []Measurement `json:"measurements"`
}

func (s *Server) ListMeasurements(c echo.Context) error {
	var req ListByAthleteRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	list, err := s.measurementService.ListByAthlete(ctx, s.getMeasurementUoW(), req.AthleteID, req.Limit, req.Offset)
	if err != nil {
		return s.fail(c, err)
	}

	t := s.translator(c)
	return c.JSON(http.StatusOK, ListMeasurementsResponse{
		Measurements: lo.Map(list, func(m *measurement.Measurement, _ int) Measurement {
			return s.measurementResponse(t, m)
		}),
	})
}
