// models/athlete.go
package models

import (
	"gorm.io/datatypes"
)

// Rarity is derived from an athlete's potential at creation time.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// TrainingType selects the attribute a training session improves.
type TrainingType string

const (
	TrainingMechanical        TrainingType = "mechanical"
	TrainingGameKnowledge     TrainingType = "game_knowledge"
	TrainingTeamCommunication TrainingType = "team_communication"
	TrainingAdaptability      TrainingType = "adaptability"
	TrainingConsistency       TrainingType = "consistency"
)

// Valid reports whether t names one of the five core attributes.
func (t TrainingType) Valid() bool {
	switch t {
	case TrainingMechanical, TrainingGameKnowledge, TrainingTeamCommunication,
		TrainingAdaptability, TrainingConsistency:
		return true
	}
	return false
}

// Athlete is a progression-bearing competitive unit.
// Core attributes live in [1,100]; form and potential in [0,100].
type Athlete struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	OwnerID       string  `json:"owner_id" gorm:"index;not null"`
	CollectibleID string  `json:"collectible_id" gorm:"uniqueIndex;not null"` // issued by the token service
	CreatorID     *string `json:"creator_id,omitempty" gorm:"index"`
	TeamID        *string `json:"team_id,omitempty" gorm:"index"`

	Name             string `json:"name" gorm:"not null"`
	Position         string `json:"position"`
	URI              string `json:"uri"`
	GameSpecificData []byte `json:"game_specific_data,omitempty"`

	Mechanical        uint8 `json:"mechanical"`
	GameKnowledge     uint8 `json:"game_knowledge"`
	TeamCommunication uint8 `json:"team_communication"`
	Adaptability      uint8 `json:"adaptability"`
	Consistency       uint8 `json:"consistency"`

	Form        uint8  `json:"form"`
	Potential   uint8  `json:"potential"`
	Rarity      Rarity `json:"rarity" gorm:"type:varchar(16)"`
	IsExclusive bool   `json:"is_exclusive" gorm:"default:false"`

	SpecialAbilities   datatypes.JSONSlice[SpecialAbility]   `json:"special_abilities"`
	PerformanceHistory datatypes.JSONSlice[MatchPerformance] `json:"performance_history"` // 5 most recent, oldest first

	Experience    uint32 `json:"experience"`
	MatchesPlayed uint32 `json:"matches_played"`
	Wins          uint32 `json:"wins"`
	MVPCount      uint32 `json:"mvp_count"`

	CreatedAt   int64 `json:"created_at"`
	LastUpdated int64 `json:"last_updated"`
}

// SpecialAbility is a named perk; names are unique per athlete.
type SpecialAbility struct {
	Name  string `json:"name"`
	Value uint8  `json:"value"`
}

// MatchPerformance is one entry of an athlete's recent match history.
type MatchPerformance struct {
	MatchID   string `json:"match_id"`
	Timestamp int64  `json:"timestamp"`
	Win       bool   `json:"win"`
	MVP       bool   `json:"mvp"`
	ExpGained uint32 `json:"exp_gained"`
	Stats     []byte `json:"stats,omitempty"` // compact per-game stat blob
}

// AthleteStats are creator-supplied starting values for exclusive athletes.
type AthleteStats struct {
	Mechanical        uint8 `json:"mechanical"`
	GameKnowledge     uint8 `json:"game_knowledge"`
	TeamCommunication uint8 `json:"team_communication"`
	Adaptability      uint8 `json:"adaptability"`
	Consistency       uint8 `json:"consistency"`
	Potential         uint8 `json:"potential"`
	Form              uint8 `json:"form"`
}

// HasAbility reports whether the athlete already owns an ability called name.
func (a *Athlete) HasAbility(name string) bool {
	for _, ab := range a.SpecialAbilities {
		if ab.Name == name {
			return true
		}
	}
	return false
}
