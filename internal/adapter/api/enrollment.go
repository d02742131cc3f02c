package api

import (
	enrollmentstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/enrollments"
	enrollmentservice "github.com/burenotti/hoops_backend/internal/app/enrollment"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountEnrollments() {
	loginRequired := s.LoginRequired()
	s.handler.POST("/groups/:group_id/enrollments", s.Enroll, loginRequired)
	s.handler.GET("/groups/:group_id/enrollments", s.ListEnrollments, loginRequired)
	s.handler.PATCH("/enrollments/:enrollment_id/active", s.SetEnrollmentActive, loginRequired)
	s.handler.GET("/athletes/eligible", s.EligibleAthletes, loginRequired)
}

func (s *Server) getEnrollmentUoW() *unitofwork.UnitOfWork[*enrollmentservice.AtomicContext] {
	return unitofwork.New[*enrollmentservice.AtomicContext](
		s.db,
		enrollmentservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Enrollment struct {
	EnrollmentID string    `json:"enrollment_id"`
	GroupID      string    `json:"group_id"`
	AthleteID    int64     `json:"athlete_id"`
	Active       bool      `json:"active"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

func enrollmentResponse(e *enrollment.Enrollment) Enrollment {
	return Enrollment{
		EnrollmentID: string(e.EnrollmentID),
		GroupID:      e.GroupID,
		AthleteID:    e.AthleteID,
		Active:       e.Active,
		EnrolledAt:   e.EnrolledAt,
	}
}

type EnrollRequest struct {
	GroupID   string `param:"group_id" validate:"required"`
	AthleteID int64  `json:"athlete_id" validate:"required,gt=0"`
}

func (s *Server) Enroll(c echo.Context) error {
	var req EnrollRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	e, err := s.enrollmentService.Enroll(ctx, s.getEnrollmentUoW(), group.GroupID(req.GroupID), req.AthleteID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, enrollmentResponse(e))
}

type ListEnrollmentsResponse struct {
	Enrollments []Enrollment `json:"enrollments"`
}

func (s *Server) ListEnrollments(c echo.Context) error {
	var req GetGroupRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	list, err := s.enrollmentService.ListByGroup(c.Request().Context(), s.getEnrollmentUoW(), group.GroupID(req.GroupID))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListEnrollmentsResponse{
		Enrollments: lo.Map(list, func(e *enrollment.Enrollment, _ int) Enrollment {
			return enrollmentResponse(e)
		}),
	})
}

type SetActiveRequest struct {
	ID     string `param:"enrollment_id"`
	Active *bool  `json:"active" validate:"required"`
}

func (s *Server) SetEnrollmentActive(c echo.Context) error {
	var req SetActiveRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	e, err := s.enrollmentService.SetActive(ctx, s.getEnrollmentUoW(), enrollment.EnrollmentID(req.ID), *req.Active)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, enrollmentResponse(e))
}

type EligibleAthletesRequest struct {
	GroupID string `query:"group_id"`
}

type EligibleAthlete struct {
	AthleteID   int64  `json:"athlete_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	StudentCode string `json:"student_code"`
}

type EligibleAthletesResponse struct {
	Athletes []EligibleAthlete `json:"athletes"`
}

// EligibleAthletes lists the athletes new trials may be recorded for.
func (s *Server) EligibleAthletes(c echo.Context) error {
	var req EligibleAthletesRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	list, _, err := s.enrollmentService.EligibleAthletes(c.Request().Context(), s.getEnrollmentUoW(), group.GroupID(req.GroupID))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, EligibleAthletesResponse{
		Athletes: lo.Map(list, func(a enrollmentstorage.EligibleAthlete, _ int) EligibleAthlete {
			return EligibleAthlete{
				AthleteID:   a.AthleteID,
				FirstName:   a.FirstName,
				LastName:    a.LastName,
				StudentCode: a.StudentCode,
			}
		}),
	})
}
