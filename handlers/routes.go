// handlers/routes.go
package handlers

import (
	"dream-league-engine/metrics"
	"dream-league-engine/services"
	"dream-league-engine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Deps are the services the HTTP surface drives. Store may be nil when R2 is
// not configured; upload routes then answer 503.
type Deps struct {
	Athletes    *services.AthleteService
	Teams       *services.TeamService
	Tournaments *services.TournamentService
	Creators    *services.CreatorService
	Store       utils.ObjectStore
	Metrics     *metrics.Recorder
}

// SetupRoutes mounts every route. The caller installs gateway auth and
// UserContextMiddleware before this runs.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	SetupAthleteRoutes(app, d.Athletes, d.Store)
	SetupCreatorRoutes(app, d.Creators)
	SetupTeamRoutes(app, d.Teams, d.Store)
	SetupTournamentRoutes(app, d.Tournaments)
}
