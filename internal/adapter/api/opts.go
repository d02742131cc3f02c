package api

import (
	"github.com/burenotti/hoops_backend/internal/adapter/i18n"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/app/auth"
	enrollmentservice "github.com/burenotti/hoops_backend/internal/app/enrollment"
	groupservice "github.com/burenotti/hoops_backend/internal/app/group"
	measurementservice "github.com/burenotti/hoops_backend/internal/app/measurement"
	profileapp "github.com/burenotti/hoops_backend/internal/app/profile"
	trialservice "github.com/burenotti/hoops_backend/internal/app/trial"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"log/slog"
	"net"
	"net/http"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func DBContext(db storage.DBContext) Option {
	return func(s *Server) {
		s.db = db
	}
}

func AuthService(service *auth.Service) Option {
	return func(s *Server) {
		s.authService = service
	}
}

func ProfileService(service *profileapp.Service) Option {
	return func(s *Server) {
		s.profileService = service
	}
}

func GroupService(service *groupservice.Service) Option {
	return func(s *Server) {
		s.groupService = service
	}
}

func EnrollmentService(service *enrollmentservice.Service) Option {
	return func(s *Server) {
		s.enrollmentService = service
	}
}

func MeasurementService(service *measurementservice.Service) Option {
	return func(s *Server) {
		s.measurementService = service
	}
}

func TrialService(service *trialservice.Service) Option {
	return func(s *Server) {
		s.trialService = service
	}
}

func Presenter(p *i18n.Presenter) Option {
	return func(s *Server) {
		s.presenter = p
	}
}

// MetricsHandler exposes the given handler on GET /metrics.
func MetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}
