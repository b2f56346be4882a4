// handlers/team.go
package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dream-league-engine/middleware"
	"dream-league-engine/services"
	"dream-league-engine/utils"

	"github.com/gofiber/fiber/v2"
)

const maxLogoBytes = 5 * 1024 * 1024

var logoExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

type teamHandler struct {
	teams *services.TeamService
	store utils.ObjectStore
}

func SetupTeamRoutes(app *fiber.App, teams *services.TeamService, store utils.ObjectStore) {
	h := teamHandler{teams: teams, store: store}

	app.Get("/teams/:id", h.get)
	app.Get("/teams/:id/performance", h.performance)

	// 🔐 Owner actions
	app.Post("/teams", middleware.RequireUser(), h.create)
	app.Post("/teams/:id/roster", middleware.RequireUser(), h.addAthlete)
	app.Delete("/teams/:id/roster/:athlete_id", middleware.RequireUser(), h.removeAthlete)
	app.Post("/teams/:id/matches", middleware.RequireUser(), h.recordMatch)
	app.Post("/teams/:id/logo", middleware.RequireUser(), h.uploadLogo)
}

type createTeamRequest struct {
	Name    string `json:"name"`
	LogoURI string `json:"logo_uri"`
}

func (h teamHandler) create(c *fiber.Ctx) error {
	var req createTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	team, err := h.teams.Create(middleware.UserID(c), req.Name, req.LogoURI)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (h teamHandler) get(c *fiber.Ctx) error {
	team, err := h.teams.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

func (h teamHandler) performance(c *fiber.Ctx) error {
	p, err := h.teams.Performance(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

type addAthleteRequest struct {
	AthleteID string `json:"athlete_id"`
	Position  string `json:"position"`
}

func (h teamHandler) addAthlete(c *fiber.Ctx) error {
	var req addAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	team, err := h.teams.AddAthlete(middleware.UserID(c), c.Params("id"), req.AthleteID, req.Position)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

func (h teamHandler) removeAthlete(c *fiber.Ctx) error {
	team, err := h.teams.RemoveAthlete(middleware.UserID(c), c.Params("id"), c.Params("athlete_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

type teamMatchRequest struct {
	MatchID    string   `json:"match_id"`
	OpponentID string   `json:"opponent_id"`
	Win        bool     `json:"win"`
	Score      [2]uint8 `json:"score"`
}

func (h teamHandler) recordMatch(c *fiber.Ctx) error {
	var req teamMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	team, err := h.teams.RecordMatch(middleware.UserID(c), c.Params("id"), services.TeamMatchInput{
		MatchID:    req.MatchID,
		OpponentID: req.OpponentID,
		Win:        req.Win,
		Score:      req.Score,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

// uploadLogo takes a multipart "logo" file, stores it and sets the team's
// LogoURI to the CDN URL.
func (h teamHandler) uploadLogo(c *fiber.Ctx) error {
	if h.store == nil {
		return storageUnavailable(c)
	}
	fh, err := c.FormFile("logo")
	if err != nil {
		return badRequest(c, fmt.Errorf("logo file is required: %w", err))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := logoExtensions[ext]
	if !ok {
		return badRequest(c, fmt.Errorf("unsupported logo type %q", ext))
	}
	if fh.Size > maxLogoBytes {
		return badRequest(c, fmt.Errorf("logo exceeds %d bytes", maxLogoBytes))
	}

	caller := middleware.UserID(c)
	team, err := h.teams.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if team.OwnerID != caller {
		return respondError(c, services.ErrUnauthorized)
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err)
	}

	uri, err := h.store.PutObject(c.UserContext(), utils.ObjectKey("teams/logos", team.Name, ext), contentType, body)
	if err != nil {
		return respondError(c, err)
	}
	team, err = h.teams.SetLogo(caller, team.ID, uri)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}
