package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/i18n"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/app/auth"
	enrollmentservice "github.com/burenotti/hoops_backend/internal/app/enrollment"
	groupservice "github.com/burenotti/hoops_backend/internal/app/group"
	measurementservice "github.com/burenotti/hoops_backend/internal/app/measurement"
	profileapp "github.com/burenotti/hoops_backend/internal/app/profile"
	trialservice "github.com/burenotti/hoops_backend/internal/app/trial"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"
)

type Server struct {
	handler            *echo.Echo
	logger             *slog.Logger
	addr               string
	db                 storage.DBContext
	authService        *auth.Service
	profileService     *profileapp.Service
	groupService       *groupservice.Service
	enrollmentService  *enrollmentservice.Service
	measurementService *measurementservice.Service
	trialService       *trialservice.Service
	presenter          *i18n.Presenter
	metricsHandler     http.Handler
	msgBus             unitofwork.MessageBus
	validator          *validator.Validate
	bindTranslator     ut.Translator
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = 10 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.IdleTimeout = 10 * time.Second
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.MaxHeaderBytes = 4096

	v, trans := newValidator()

	s := &Server{
		handler:        e,
		logger:         slog.Default(),
		validator:      v,
		bindTranslator: trans,
	}

	for _, opt := range opt {
		opt(s)
	}

	if s.presenter == nil {
		p, err := i18n.New("en")
		if err != nil {
			panic(err)
		}
		s.presenter = p
	}

	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithSpanID:       true,
		WithTraceID:      true,
	}))
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountAuth()
	s.MountProfile()
	s.MountGroups()
	s.MountEnrollments()
	s.MountMeasurements()
	s.MountTrials()
	s.MountMetrics()
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "param", "query", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v, trans
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return errors.New(errs[0].Translate(s.bindTranslator))
	}
	return nil
}

// bindPayload reads a JSON object body as is. Assessment payloads are
// normalized by the services, so no struct binding happens here.
func (s *Server) bindPayload(c echo.Context) (map[string]any, error) {
	payload := make(map[string]any)
	if err := new(echo.DefaultBinder).BindBody(c, &payload); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	return payload, nil
}

func (s *Server) translator(c echo.Context) ut.Translator {
	return s.presenter.Negotiate(c.Request().Header.Get("Accept-Language"))
}
