package api

import (
	profileapp "github.com/burenotti/hoops_backend/internal/app/profile"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountProfile() {
	loginRequired := s.LoginRequired()

	s.handler.POST("/coaches/:user_id", s.CreateCoach, loginRequired)
	s.handler.GET("/coaches/:user_id", s.GetCoachByID, loginRequired)

	s.handler.POST("/liaisons/:user_id", s.CreateLiaison, loginRequired)
	s.handler.GET("/liaisons/:user_id", s.GetLiaisonByID, loginRequired)

	s.handler.GET("/profiles/me", s.GetMyProfile, loginRequired)

	s.handler.POST("/athletes", s.RegisterAthlete, loginRequired)
	s.handler.GET("/athletes", s.ListAthletes, loginRequired)
	s.handler.GET("/athletes/:athlete_id", s.GetAthlete, loginRequired)
}

func (s *Server) getProfileUoW() *unitofwork.UnitOfWork[*profileapp.AtomicContext] {
	return unitofwork.New[*profileapp.AtomicContext](
		s.db,
		profileapp.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

// ownProfile rejects attempts to create a profile for somebody else.
func ownProfile(c echo.Context, userID string) error {
	if currentUser(c).UserID != userID {
		return JsonError(c, http.StatusForbidden, "profiles can only be created for yourself")
	}
	return nil
}

type CreateCoachRequest struct {
	UserID          string `param:"user_id" validate:"required"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	YearsExperience int    `json:"years_experience" validate:"gte=0,lte=80"`
	Bio             string `json:"bio" validate:"max=2000"`
}

type CoachResponse struct {
	UserID          string `json:"user_id"`
	Type            string `json:"type"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

func coachResponse(c *profile.Coach) CoachResponse {
	return CoachResponse{
		UserID:          c.UserID,
		Type:            c.Type(),
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		YearsExperience: c.YearsExperience,
		Bio:             c.Bio,
	}
}

func (s *Server) CreateCoach(c echo.Context) error {
	var req CreateCoachRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	if err := ownProfile(c, req.UserID); err != nil {
		return err
	}

	coach, err := s.profileService.CreateCoach(
		c.Request().Context(),
		req.UserID,
		req.FirstName,
		req.LastName,
		req.YearsExperience,
		req.Bio,
		s.getProfileUoW(),
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, coachResponse(coach))
}

type GetProfileRequest struct {
	UserID string `param:"user_id" validate:"required"`
}

func (s *Server) GetCoachByID(c echo.Context) error {
	var req GetProfileRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	coach, err := s.profileService.GetCoachByID(c.Request().Context(), req.UserID, s.getProfileUoW())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, coachResponse(coach))
}

type CreateLiaisonRequest struct {
	UserID      string `param:"user_id" validate:"required"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	StudentCode string `json:"student_code" validate:"required,max=32"`
}

type LiaisonResponse struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	StudentCode string `json:"student_code"`
}

func liaisonResponse(l *profile.Liaison) LiaisonResponse {
	return LiaisonResponse{
		UserID:      l.UserID,
		Type:        l.Type(),
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		StudentCode: l.StudentCode,
	}
}

func (s *Server) CreateLiaison(c echo.Context) error {
	var req CreateLiaisonRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	if err := ownProfile(c, req.UserID); err != nil {
		return err
	}

	liaison, err := s.profileService.CreateLiaison(
		c.Request().Context(),
		req.UserID,
		req.FirstName,
		req.LastName,
		req.StudentCode,
		s.getProfileUoW(),
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, liaisonResponse(liaison))
}

func (s *Server) GetLiaisonByID(c echo.Context) error {
	var req GetProfileRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	p, err := s.profileService.GetProfileByID(c.Request().Context(), req.UserID, s.getProfileUoW())
	if err != nil {
		return s.fail(c, err)
	}
	l, ok := p.(*profile.Liaison)
	if !ok {
		return s.fail(c, profile.ErrProfileNotFound)
	}
	return c.JSON(http.StatusOK, liaisonResponse(l))
}

func (s *Server) GetMyProfile(c echo.Context) error {
	p, err := s.profileService.GetProfileByID(c.Request().Context(), currentUser(c).UserID, s.getProfileUoW())
	if err != nil {
		return s.fail(c, err)
	}

	switch v := p.(type) {
	case *profile.Coach:
		return c.JSON(http.StatusOK, coachResponse(v))
	case *profile.Liaison:
		return c.JSON(http.StatusOK, liaisonResponse(v))
	default:
		panic("unknown profile type")
	}
}

type RegisterAthleteRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	BirthDate   string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	StudentCode string `json:"student_code" validate:"required,max=32"`
}

type Athlete struct {
	AthleteID   int64   `json:"athlete_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	BirthDate   *string `json:"birth_date,omitempty"`
	StudentCode string  `json:"student_code"`
}

func athleteResponse(a *profile.Athlete) Athlete {
	resp := Athlete{
		AthleteID:   a.AthleteID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		StudentCode: a.StudentCode,
	}
	if a.BirthDate != nil {
		resp.BirthDate = lo.ToPtr(a.BirthDate.Format(assessment.DateLayout))
	}
	return resp
}

func (s *Server) RegisterAthlete(c echo.Context) error {
	var req RegisterAthleteRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		d, err := time.Parse(assessment.DateLayout, req.BirthDate)
		if err != nil {
			return JsonError(c, http.StatusBadRequest, "birth_date must be a date in YYYY-MM-DD format")
		}
		birthDate = &d
	}

	a, err := s.profileService.RegisterAthlete(
		c.Request().Context(),
		req.FirstName,
		req.LastName,
		birthDate,
		req.StudentCode,
		s.getProfileUoW(),
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, athleteResponse(a))
}

type GetAthleteRequest struct {
	AthleteID int64 `param:"athlete_id" validate:"required,gt=0"`
}

func (s *Server) GetAthlete(c echo.Context) error {
	var req GetAthleteRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	a, err := s.profileService.GetAthlete(c.Request().Context(), req.AthleteID, s.getProfileUoW())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, athleteResponse(a))
}

type PageRequest struct {
	Limit  int `query:"limit" validate:"gte=0,lte=1000"`
	Offset int `query:"offset" validate:"gte=0"`
}

type ListAthletesResponse struct {
	Athletes []Athlete `json:"athletes"`
}

func (s *Server) ListAthletes(c echo.Context) error {
	var req PageRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	list, err := s.profileService.ListAthletes(c.Request().Context(), req.Limit, req.Offset, s.getProfileUoW())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ListAthletesResponse{
		Athletes: lo.Map(list, func(a *profile.Athlete, _ int) Athlete {
			return athleteResponse(a)
		}),
	})
}
