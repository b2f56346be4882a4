package services

import (
	"fmt"
	"log"
	"time"

	"dream-league-engine/metrics"
	"dream-league-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AthleteService struct {
	DB      *gorm.DB
	Metrics *metrics.Recorder
	Now     func() time.Time
}

func NewAthleteService(db *gorm.DB, rec *metrics.Recorder) *AthleteService {
	return &AthleteService{DB: db, Metrics: rec, Now: time.Now}
}

// CreateAthleteInput describes a standard athlete. CollectibleID comes from
// the token service; a fresh one is issued when it is empty.
type CreateAthleteInput struct {
	CollectibleID    string `json:"collectible_id"`
	Name             string `json:"name"`
	Position         string `json:"position"`
	URI              string `json:"uri"`
	GameSpecificData []byte `json:"game_specific_data"`
}

// Create initialises a standard athlete owned by ownerID.
func (s *AthleteService) Create(ownerID string, in CreateAthleteInput) (*models.Athlete, error) {
	if ownerID == "" || in.Name == "" {
		return nil, fmt.Errorf("owner and name are required: %w", ErrInvalidParameters)
	}
	collectible := in.CollectibleID
	if collectible == "" {
		collectible = uuid.NewString()
	}

	a := InitializeAthlete(NewAthlete{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		CollectibleID:    collectible,
		Name:             in.Name,
		Position:         in.Position,
		URI:              in.URI,
		GameSpecificData: in.GameSpecificData,
	}, unixNow(s.Now))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return insertAthlete(tx, a)
	})
	s.Metrics.RecordOperation("athlete", "create", resultLabel(err))
	if err != nil {
		log.Printf("❌ [ATHLETE] Failed to create athlete %q for %s: %v", in.Name, ownerID, err)
		return nil, err
	}
	log.Printf("✅ [ATHLETE] Created %s (%s, rarity=%s) for %s", a.ID, a.Name, a.Rarity, ownerID)
	return a, nil
}

func (s *AthleteService) Get(id string) (*models.Athlete, error) {
	return findByID[models.Athlete](s.DB, id)
}

// RecordMatch applies one match outcome to the athlete.
func (s *AthleteService) RecordMatch(callerID, id string, r MatchResult) (*models.Athlete, error) {
	return s.mutate("record_match", callerID, id, func(a *models.Athlete, now int64) error {
		ApplyMatchResult(a, r, now)
		return nil
	})
}

// Train runs one training session.
func (s *AthleteService) Train(callerID, id string, kind models.TrainingType, intensity uint8) (*models.Athlete, error) {
	return s.mutate("train", callerID, id, func(a *models.Athlete, now int64) error {
		return Train(a, kind, intensity, now)
	})
}

// GrantAbility adds a named ability to the athlete.
func (s *AthleteService) GrantAbility(callerID, id, name string, value uint8) (*models.Athlete, error) {
	if name == "" {
		return nil, fmt.Errorf("ability name is required: %w", ErrInvalidParameters)
	}
	return s.mutate("grant_ability", callerID, id, func(a *models.Athlete, now int64) error {
		if err := GrantAbility(a, name, value); err != nil {
			return err
		}
		a.LastUpdated = now
		return nil
	})
}

// SetURI points the athlete at a new metadata document.
func (s *AthleteService) SetURI(callerID, id, uri string) (*models.Athlete, error) {
	return s.mutate("set_uri", callerID, id, func(a *models.Athlete, now int64) error {
		a.URI = uri
		a.LastUpdated = now
		return nil
	})
}

// mutate locks the athlete, checks ownership, applies fn and saves, all in
// one transaction. Abilities that fn unlocks are counted.
func (s *AthleteService) mutate(op, callerID, id string, fn func(a *models.Athlete, now int64) error) (*models.Athlete, error) {
	var out *models.Athlete
	var unlocked []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := lockByID[models.Athlete](tx, id)
		if err != nil {
			return err
		}
		if err := authorize(a.OwnerID, callerID); err != nil {
			return err
		}

		before := len(a.SpecialAbilities)
		if err := fn(a, unixNow(s.Now)); err != nil {
			return err
		}
		for _, ab := range a.SpecialAbilities[before:] {
			unlocked = append(unlocked, ab.Name)
		}

		if err := tx.Save(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})

	s.Metrics.RecordOperation("athlete", op, resultLabel(err))
	if err != nil {
		log.Printf("❌ [ATHLETE] %s on %s by %s failed: %v", op, id, callerID, err)
		return nil, err
	}
	for _, name := range unlocked {
		s.Metrics.RecordAbilityGranted(name)
		log.Printf("✅ [ATHLETE] %s unlocked %q", id, name)
	}
	return out, nil
}
