// models/tournament.go
package models

import "gorm.io/datatypes"

const (
	MinTournamentTeams = 2
	MaxTournamentTeams = 64
)

// TournamentStatus moves registration → in_progress → completed.
// canceled is an alternate terminal state set by an admin.
type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentInProgress   TournamentStatus = "in_progress"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCanceled     TournamentStatus = "canceled"
)

// Tournament is a single-elimination bracket with an entry-fee prize pool.
type Tournament struct {
	ID          string `json:"id" gorm:"primaryKey"`
	AuthorityID string `json:"authority_id" gorm:"not null;uniqueIndex:idx_tournament_authority_slug"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"not null;uniqueIndex:idx_tournament_authority_slug"`

	EntryFee  uint64 `json:"entry_fee"`
	PrizePool uint64 `json:"prize_pool"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
	MaxTeams  uint8  `json:"max_teams"`

	RegisteredTeams datatypes.JSONSlice[string]          `json:"registered_teams"`
	Matches         datatypes.JSONSlice[TournamentMatch] `json:"matches"`
	Status          TournamentStatus                     `json:"status" gorm:"type:varchar(16);index"`

	CreatedAt int64 `json:"created_at"`
}

// TournamentMatch is one bracket pairing. It is immutable once Completed.
type TournamentMatch struct {
	MatchID   string   `json:"match_id"` // R{round}_M{n}
	Timestamp int64    `json:"timestamp"`
	TeamA     string   `json:"team_a"`
	TeamB     string   `json:"team_b"`
	Winner    *string  `json:"winner,omitempty"`
	Score     [2]uint8 `json:"score"`
	Round     uint8    `json:"round"`
	Completed bool     `json:"completed"`
	MatchData []byte   `json:"match_data,omitempty"`
}

// IsRegistered reports whether teamID is already in the registrant list.
func (t *Tournament) IsRegistered(teamID string) bool {
	for _, id := range t.RegisteredTeams {
		if id == teamID {
			return true
		}
	}
	return false
}
