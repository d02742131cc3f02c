package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MountMetrics exposes the Prometheus scrape endpoint. Without an explicit
// handler the default registry is served.
func (s *Server) MountMetrics() {
	h := s.metricsHandler
	if h == nil {
		h = promhttp.Handler()
	}
	s.handler.GET("/metrics", echo.WrapHandler(h))
}
