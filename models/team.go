// models/team.go
package models

import "gorm.io/datatypes"

const (
	MaxRosterSize       = 5
	MaxTeamMatchHistory = 10
)

// Team groups up to five athletes, one per declared position.
type Team struct {
	ID      string `json:"id" gorm:"primaryKey"`
	OwnerID string `json:"owner_id" gorm:"not null;uniqueIndex:idx_team_owner_slug"`
	Name    string `json:"name" gorm:"not null"`
	Slug    string `json:"slug" gorm:"not null;uniqueIndex:idx_team_owner_slug"`
	LogoURI string `json:"logo_uri"`

	Roster       RosterSlice                          `json:"roster"`
	Statistics   TeamStatistics                       `json:"statistics" gorm:"embedded;embeddedPrefix:stats_"`
	MatchHistory datatypes.JSONSlice[TeamMatchResult] `json:"match_history"` // 10 most recent, oldest first

	CreatedAt   int64 `json:"created_at"`
	LastUpdated int64 `json:"last_updated"`
}

// RosterSlice is the JSON-column form of a roster.
type RosterSlice = datatypes.JSONSlice[RosterPosition]

// RosterPosition binds an athlete to the position it plays for the team.
type RosterPosition struct {
	AthleteID string `json:"athlete_id"`
	Position  string `json:"position"`
	AddedAt   int64  `json:"added_at"`
}

// TeamStatistics are aggregates recomputed on every roster change.
type TeamStatistics struct {
	MatchesPlayed        uint32 `json:"matches_played"`
	Wins                 uint32 `json:"wins"`
	Losses               uint32 `json:"losses"`
	TournamentWins       uint32 `json:"tournament_wins"`
	AvgMechanical        uint8  `json:"avg_mechanical"`
	AvgGameKnowledge     uint8  `json:"avg_game_knowledge"`
	AvgTeamCommunication uint8  `json:"avg_team_communication"`
	SynergyScore         uint8  `json:"synergy_score"`
}

// TeamMatchResult is one entry of a team's recent match history.
type TeamMatchResult struct {
	MatchID      string   `json:"match_id"`
	Timestamp    int64    `json:"timestamp"`
	OpponentID   string   `json:"opponent_id"`
	Win          bool     `json:"win"`
	Score        [2]uint8 `json:"score"` // [team, opponent]
	TournamentID *string  `json:"tournament_id,omitempty"`
}

// RosterEntry returns the index of athleteID in the roster, or -1.
func (t *Team) RosterEntry(athleteID string) int {
	for i, p := range t.Roster {
		if p.AthleteID == athleteID {
			return i
		}
	}
	return -1
}
