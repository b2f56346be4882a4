// handlers/tournament.go
package handlers

import (
	"encoding/json"

	"dream-league-engine/middleware"
	"dream-league-engine/services"

	"github.com/gofiber/fiber/v2"
)

type tournamentHandler struct {
	tournaments *services.TournamentService
}

func SetupTournamentRoutes(app *fiber.App, tournaments *services.TournamentService) {
	h := tournamentHandler{tournaments: tournaments}

	app.Get("/tournaments/:id", h.get)

	// 🔐 Authenticated routes
	app.Post("/tournaments", middleware.RequireUser(), h.create)
	app.Post("/tournaments/:id/register", middleware.RequireUser(), h.register)
	app.Post("/tournaments/:id/results", middleware.RequireUser(), h.recordResult)

	// 🔒 Admin-only routes
	app.Post("/admin/tournaments/:id/cancel", middleware.RequireUser(), middleware.RequireRole(middleware.RoleAdmin), h.cancel)
}

func (h tournamentHandler) create(c *fiber.Ctx) error {
	var req services.CreateTournamentInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	t, err := h.tournaments.Create(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h tournamentHandler) get(c *fiber.Ctx) error {
	t, err := h.tournaments.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

type registerTeamRequest struct {
	TeamID string `json:"team_id"`
}

func (h tournamentHandler) register(c *fiber.Ctx) error {
	var req registerTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	t, err := h.tournaments.Register(middleware.UserID(c), c.Params("id"), req.TeamID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

type matchOutcomeRequest struct {
	MatchID   string          `json:"match_id"`
	WinnerID  string          `json:"winner_id"`
	LoserID   string          `json:"loser_id"`
	Score     [2]uint8        `json:"score"`
	MatchData json.RawMessage `json:"match_data"`
}

func (h tournamentHandler) recordResult(c *fiber.Ctx) error {
	var req matchOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	t, err := h.tournaments.RecordResult(middleware.UserID(c), c.Params("id"), services.MatchOutcome{
		MatchID:   req.MatchID,
		WinnerID:  req.WinnerID,
		LoserID:   req.LoserID,
		Score:     req.Score,
		MatchData: req.MatchData,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h tournamentHandler) cancel(c *fiber.Ctx) error {
	t, err := h.tournaments.Cancel(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}
