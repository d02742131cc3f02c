package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/app/auth"
	"github.com/burenotti/hoops_backend/internal/app/form"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	"github.com/labstack/echo/v4"
	"net/http"
)

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// RejectionModel is returned with 422 when a submission fails validation
// locally or on the server.
type RejectionModel struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"field_errors"`
}

const msgRejected = "submission has invalid fields"

var errorStatuses = []struct {
	err    error
	status int
}{
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrUnauthorized, http.StatusUnauthorized},
	{auth.ErrInvalidAuthorization, http.StatusUnauthorized},
	{user.ErrUserNotFound, http.StatusNotFound},
	{profile.ErrProfileNotFound, http.StatusNotFound},
	{profile.ErrAthleteNotFound, http.StatusNotFound},
	{group.ErrGroupNotFound, http.StatusNotFound},
	{enrollment.ErrEnrollmentNotFound, http.StatusNotFound},
	{measurement.ErrMeasurementNotFound, http.StatusNotFound},
	{trial.ErrTrialNotFound, http.StatusNotFound},
	{user.ErrUserExists, http.StatusConflict},
	{profile.ErrProfileExists, http.StatusConflict},
	{profile.ErrStudentCodeUsed, http.StatusConflict},
	{group.ErrGroupExists, http.StatusConflict},
	{enrollment.ErrEnrollmentExists, http.StatusConflict},
	{measurement.ErrMeasurementExists, http.StatusConflict},
}

// fail writes err with the status its kind maps to. Anything unknown is
// logged and hidden behind a 500.
func (s *Server) fail(c echo.Context, err error) error {
	var rejection *form.Rejection
	if errors.As(err, &rejection) {
		return s.reject(c, rejection)
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return JsonError(c, e.status, err)
		}
	}

	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return JsonError(c, http.StatusInternalServerError, "internal error")
}

func (s *Server) reject(c echo.Context, r *form.Rejection) error {
	msg := r.Message
	if msg == "" {
		msg = msgRejected
	}
	return c.JSON(http.StatusUnprocessableEntity, RejectionModel{
		Message:     msg,
		FieldErrors: s.presenter.Errors(s.translator(c), r.Errors),
	})
}
