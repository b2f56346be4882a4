// handlers/creator.go
package handlers

import (
	"encoding/json"

	"dream-league-engine/middleware"
	"dream-league-engine/models"
	"dream-league-engine/services"

	"github.com/gofiber/fiber/v2"
)

type creatorHandler struct {
	creators *services.CreatorService
}

func SetupCreatorRoutes(app *fiber.App, creators *services.CreatorService) {
	h := creatorHandler{creators: creators}

	app.Get("/creators/:id", h.get)

	app.Post("/creators", middleware.RequireUser(), h.register)
	app.Post("/creators/:id/athletes", middleware.RequireUser(), h.createExclusiveAthlete)

	// 🔒 Admin-only routes
	app.Post("/admin/creators/:id/verify", middleware.RequireUser(), middleware.RequireRole(middleware.RoleAdmin), h.verify)
}

type registerCreatorRequest struct {
	Name           string `json:"name"`
	FeeBasisPoints uint16 `json:"fee_basis_points"`
}

func (h creatorHandler) register(c *fiber.Ctx) error {
	var req registerCreatorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	cr, err := h.creators.Register(middleware.UserID(c), req.Name, req.FeeBasisPoints)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cr)
}

func (h creatorHandler) get(c *fiber.Ctx) error {
	cr, err := h.creators.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cr)
}

func (h creatorHandler) verify(c *fiber.Ctx) error {
	cr, err := h.creators.Verify(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cr)
}

type exclusiveAthleteRequest struct {
	CollectibleID    string               `json:"collectible_id"`
	Name             string               `json:"name"`
	Position         string               `json:"position"`
	URI              string               `json:"uri"`
	GameSpecificData json.RawMessage      `json:"game_specific_data"`
	CollectionID     *string              `json:"collection_id"`
	PredefinedStats  *models.AthleteStats `json:"predefined_stats"`
}

func (h creatorHandler) createExclusiveAthlete(c *fiber.Ctx) error {
	var req exclusiveAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	a, err := h.creators.CreateExclusiveAthlete(middleware.UserID(c), c.Params("id"), services.ExclusiveAthleteInput{
		CollectibleID:    req.CollectibleID,
		Name:             req.Name,
		Position:         req.Position,
		URI:              req.URI,
		GameSpecificData: req.GameSpecificData,
		CollectionID:     req.CollectionID,
		Predefined:       req.PredefinedStats,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}
