// handlers/athlete.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"dream-league-engine/middleware"
	"dream-league-engine/models"
	"dream-league-engine/services"
	"dream-league-engine/utils"

	"github.com/gofiber/fiber/v2"
)

type athleteHandler struct {
	athletes *services.AthleteService
	store    utils.ObjectStore
}

func SetupAthleteRoutes(app *fiber.App, athletes *services.AthleteService, store utils.ObjectStore) {
	h := athleteHandler{athletes: athletes, store: store}

	app.Get("/athletes/:id", h.get)

	// 🔐 Owner actions
	app.Post("/athletes", middleware.RequireUser(), h.create)
	app.Post("/athletes/:id/matches", middleware.RequireUser(), h.recordMatch)
	app.Post("/athletes/:id/train", middleware.RequireUser(), h.train)
	app.Post("/athletes/:id/abilities", middleware.RequireUser(), h.grantAbility)
	app.Post("/athletes/:id/metadata", middleware.RequireUser(), h.uploadMetadata)
}

type createAthleteRequest struct {
	CollectibleID    string          `json:"collectible_id"`
	Name             string          `json:"name"`
	Position         string          `json:"position"`
	URI              string          `json:"uri"`
	GameSpecificData json.RawMessage `json:"game_specific_data"`
}

func (h athleteHandler) create(c *fiber.Ctx) error {
	var req createAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	a, err := h.athletes.Create(middleware.UserID(c), services.CreateAthleteInput{
		CollectibleID:    req.CollectibleID,
		Name:             req.Name,
		Position:         req.Position,
		URI:              req.URI,
		GameSpecificData: req.GameSpecificData,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h athleteHandler) get(c *fiber.Ctx) error {
	a, err := h.athletes.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

type matchResultRequest struct {
	MatchID         string          `json:"match_id"`
	Win             bool            `json:"win"`
	MVP             bool            `json:"mvp"`
	ExpGained       uint32          `json:"exp_gained"`
	AttributeDeltas [5]int8         `json:"attribute_deltas"`
	FormDelta       int8            `json:"form_delta"`
	Stats           json.RawMessage `json:"stats"`
}

func (h athleteHandler) recordMatch(c *fiber.Ctx) error {
	var req matchResultRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.MatchID == "" {
		return respondError(c, fmt.Errorf("match_id is required: %w", services.ErrInvalidParameters))
	}
	a, err := h.athletes.RecordMatch(middleware.UserID(c), c.Params("id"), services.MatchResult{
		MatchID:         req.MatchID,
		Win:             req.Win,
		MVP:             req.MVP,
		ExpGained:       req.ExpGained,
		AttributeDeltas: req.AttributeDeltas,
		FormDelta:       req.FormDelta,
		Stats:           req.Stats,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

type trainRequest struct {
	TrainingType models.TrainingType `json:"training_type"`
	Intensity    uint8               `json:"intensity"`
}

func (h athleteHandler) train(c *fiber.Ctx) error {
	var req trainRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if !req.TrainingType.Valid() {
		return respondError(c, fmt.Errorf("unknown training type %q: %w", req.TrainingType, services.ErrInvalidParameters))
	}
	a, err := h.athletes.Train(middleware.UserID(c), c.Params("id"), req.TrainingType, req.Intensity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

type grantAbilityRequest struct {
	Name  string `json:"name"`
	Value uint8  `json:"value"`
}

func (h athleteHandler) grantAbility(c *fiber.Ctx) error {
	var req grantAbilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	a, err := h.athletes.GrantAbility(middleware.UserID(c), c.Params("id"), req.Name, req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

// uploadMetadata stores the request body as the athlete's metadata document
// and points the athlete's URI at it.
func (h athleteHandler) uploadMetadata(c *fiber.Ctx) error {
	if h.store == nil {
		return storageUnavailable(c)
	}
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return badRequest(c, errors.New("metadata must be a JSON document"))
	}

	caller := middleware.UserID(c)
	a, err := h.athletes.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if a.OwnerID != caller {
		return respondError(c, services.ErrUnauthorized)
	}

	uri, err := h.store.PutObject(c.UserContext(), utils.ObjectKey("athletes/metadata", a.Name, ".json"), fiber.MIMEApplicationJSON, body)
	if err != nil {
		return respondError(c, err)
	}
	a, err = h.athletes.SetURI(caller, a.ID, uri)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}
