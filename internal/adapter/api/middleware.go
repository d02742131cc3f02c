package api

import (
	"github.com/burenotti/hoops_backend/internal/app/auth"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const KeyCurrentUser = "current_user"

// LoginRequired accepts requests carrying a valid bearer token whose
// authorization has not been closed by a logout.
func (s *Server) LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return JsonError(c, http.StatusUnauthorized, "invalid Authorization header")
			}

			data, err := s.authService.Authorizer.ValidateAccessToken(parts[1])
			if err != nil {
				return JsonError(c, http.StatusUnauthorized, err.Error())
			}

			uow := unitofwork.New[*auth.AtomicContext](s.db, auth.NewAtomicContext, s.msgBus, s.logger)
			active, err := s.authService.IsActive(c.Request().Context(), uow, data)
			if err != nil {
				return s.fail(c, err)
			}
			if !active {
				return JsonError(c, http.StatusUnauthorized, "authorization is closed")
			}

			c.Set(KeyCurrentUser, data)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *auth.AccessTokenData {
	return c.Get(KeyCurrentUser).(*auth.AccessTokenData)
}
