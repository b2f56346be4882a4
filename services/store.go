package services

import (
	"errors"
	"fmt"
	"time"

	"dream-league-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockByID loads one row for update inside tx. Writers to the same entity
// serialise on the row lock.
func lockByID[T any](tx *gorm.DB, id string) (*T, error) {
	var row T
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func findByID[T any](db *gorm.DB, id string) (*T, error) {
	var row T
	err := db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// authorize is the capability check: only the recorded controller may mutate.
func authorize(controllerID, callerID string) error {
	if callerID == "" || controllerID != callerID {
		return ErrUnauthorized
	}
	return nil
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := ErrorCode(err); code != "" {
		return code
	}
	return "error"
}

func unixNow(clock func() time.Time) int64 {
	if clock == nil {
		return time.Now().Unix()
	}
	return clock().Unix()
}

// dbAthleteLookup reads roster members from the same transaction as the
// roster write.
type dbAthleteLookup struct {
	tx *gorm.DB
}

func (l dbAthleteLookup) LookupAthletes(ids []string) (map[string]AthleteSnapshot, error) {
	out := make(map[string]AthleteSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var athletes []models.Athlete
	if err := l.tx.Where("id IN ?", ids).Find(&athletes).Error; err != nil {
		return nil, err
	}
	for i := range athletes {
		out[athletes[i].ID] = SnapshotOf(&athletes[i])
	}
	return out, nil
}

func rosterLookup(tx *gorm.DB, placeholder bool) AthleteLookup {
	if placeholder {
		return PlaceholderAggregates{}
	}
	return dbAthleteLookup{tx: tx}
}

// insertAthlete creates a, refusing a collectible that already backs another
// athlete.
func insertAthlete(tx *gorm.DB, a *models.Athlete) error {
	var existing int64
	if err := tx.Model(&models.Athlete{}).Where("collectible_id = ?", a.CollectibleID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("collectible %q: %w", a.CollectibleID, ErrAlreadyExists)
	}
	if err := tx.Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("collectible %q: %w", a.CollectibleID, ErrAlreadyExists)
		}
		return err
	}
	return nil
}
