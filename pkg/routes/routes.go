// Package routes mounts the API handlers under /api/v1.
package routes

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/internal/services/wizard"
	draftroutes "github.com/starsandeep/sfsync/pkg/routes/draft"
	mappingroutes "github.com/starsandeep/sfsync/pkg/routes/mapping"
	sessionroutes "github.com/starsandeep/sfsync/pkg/routes/session"
)

func Register(e *echo.Echo, service *wizard.Service, logger ectologger.Logger) *echo.Group {
	g := e.Group("/api/v1")
	mappingroutes.NewHandler(service, logger).RegisterRoutes(g)
	sessionroutes.NewHandler(service, logger).RegisterRoutes(g)
	draftroutes.NewHandler(service, logger).RegisterRoutes(g)
	return g
}
