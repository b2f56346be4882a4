package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"dream-league-engine/metrics"
	"dream-league-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreatorService struct {
	DB      *gorm.DB
	Metrics *metrics.Recorder
	Now     func() time.Time
}

func NewCreatorService(db *gorm.DB, rec *metrics.Recorder) *CreatorService {
	return &CreatorService{DB: db, Metrics: rec, Now: time.Now}
}

// Register creates the caller's creator profile. One per authority.
func (s *CreatorService) Register(authorityID, name string, feeBasisPoints uint16) (*models.Creator, error) {
	if authorityID == "" || name == "" {
		return nil, fmt.Errorf("authority and name are required: %w", ErrInvalidParameters)
	}

	var out *models.Creator
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Creator{}).Where("authority_id = ?", authorityID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("creator for %s: %w", authorityID, ErrAlreadyExists)
		}

		c, err := NewCreator(uuid.NewString(), authorityID, name, feeBasisPoints, unixNow(s.Now))
		if err != nil {
			return err
		}
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("creator for %s: %w", authorityID, ErrAlreadyExists)
			}
			return err
		}
		out = c
		return nil
	})

	s.Metrics.RecordOperation("creator", "register", resultLabel(err))
	if err != nil {
		log.Printf("❌ [CREATOR] Register %q for %s failed: %v", name, authorityID, err)
		return nil, err
	}
	log.Printf("✅ [CREATOR] Registered %s (%s, %d bps), awaiting verification", out.ID, out.Name, out.FeeBasisPoints)
	return out, nil
}

func (s *CreatorService) Get(id string) (*models.Creator, error) {
	return findByID[models.Creator](s.DB, id)
}

// Verify is an admin action; the role check happens in the route group.
func (s *CreatorService) Verify(id string) (*models.Creator, error) {
	var out *models.Creator
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, err := lockByID[models.Creator](tx, id)
		if err != nil {
			return err
		}
		VerifyCreator(c)
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		out = c
		return nil
	})

	s.Metrics.RecordOperation("creator", "verify", resultLabel(err))
	if err != nil {
		log.Printf("❌ [CREATOR] Verify %s failed: %v", id, err)
		return nil, err
	}
	log.Printf("✅ [CREATOR] Verified %s", id)
	return out, nil
}

// ExclusiveAthleteInput describes an athlete minted by a verified creator.
type ExclusiveAthleteInput struct {
	CollectibleID    string               `json:"collectible_id"`
	Name             string               `json:"name"`
	Position         string               `json:"position"`
	URI              string               `json:"uri"`
	GameSpecificData []byte               `json:"game_specific_data"`
	CollectionID     *string              `json:"collection_id"`
	Predefined       *models.AthleteStats `json:"predefined_stats"`
}

// CreateExclusiveAthlete mints an exclusive athlete owned by the creator's
// authority and updates the creator's counters in the same transaction.
func (s *CreatorService) CreateExclusiveAthlete(callerID, creatorID string, in ExclusiveAthleteInput) (*models.Athlete, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidParameters)
	}
	if err := validatePredefined(in.Predefined); err != nil {
		return nil, err
	}

	var out *models.Athlete
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		c, err := lockByID[models.Creator](tx, creatorID)
		if err != nil {
			return err
		}
		if err := authorize(c.AuthorityID, callerID); err != nil {
			return err
		}
		if err := RecordExclusiveAthlete(c, in.CollectionID); err != nil {
			return err
		}

		collectible := in.CollectibleID
		if collectible == "" {
			collectible = uuid.NewString()
		}
		a := InitializeAthlete(NewAthlete{
			ID:               uuid.NewString(),
			OwnerID:          callerID,
			CollectibleID:    collectible,
			Name:             in.Name,
			Position:         in.Position,
			URI:              in.URI,
			GameSpecificData: in.GameSpecificData,
			Exclusive:        true,
			CreatorID:        &c.ID,
			CreatorName:      c.Name,
			Predefined:       in.Predefined,
		}, unixNow(s.Now))

		if err := insertAthlete(tx, a); err != nil {
			return err
		}
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		out = a
		return nil
	})

	s.Metrics.RecordOperation("creator", "create_exclusive_athlete", resultLabel(err))
	if err != nil {
		log.Printf("❌ [CREATOR] Exclusive athlete %q by %s failed: %v", in.Name, creatorID, err)
		return nil, err
	}
	for _, ab := range out.SpecialAbilities {
		s.Metrics.RecordAbilityGranted(ab.Name)
	}
	log.Printf("✅ [CREATOR] %s minted exclusive athlete %s (%s, rarity=%s)", creatorID, out.ID, out.Name, out.Rarity)
	return out, nil
}

// validatePredefined keeps creator-supplied stats inside the attribute bounds.
func validatePredefined(p *models.AthleteStats) error {
	if p == nil {
		return nil
	}
	for _, v := range []uint8{p.Mechanical, p.GameKnowledge, p.TeamCommunication, p.Adaptability, p.Consistency} {
		if v < MinAttribute || v > MaxAttribute {
			return fmt.Errorf("attribute %d outside [%d,%d]: %w", v, MinAttribute, MaxAttribute, ErrInvalidParameters)
		}
	}
	if p.Form > MaxForm || p.Potential > MaxAttribute {
		return fmt.Errorf("form and potential must be at most 100: %w", ErrInvalidParameters)
	}
	return nil
}
