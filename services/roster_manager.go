// services/roster_manager.go
package services

import (
	"fmt"

	"dream-league-engine/models"

	"github.com/gosimple/slug"
)

const (
	secondsPerDay    = 86400
	baseSynergy      = 60
	maxSynergyBonus  = 20
	placeholderMech  = 70
	placeholderGK    = 65
	placeholderComms = 75
)

// AthleteSnapshot is the slice of an athlete that team aggregates need.
type AthleteSnapshot struct {
	ID                string
	Mechanical        uint8
	GameKnowledge     uint8
	TeamCommunication uint8
	Adaptability      uint8
	Consistency       uint8
	Form              uint8
}

// SnapshotOf projects an athlete onto the fields team aggregates read.
func SnapshotOf(a *models.Athlete) AthleteSnapshot {
	return AthleteSnapshot{
		ID:                a.ID,
		Mechanical:        a.Mechanical,
		GameKnowledge:     a.GameKnowledge,
		TeamCommunication: a.TeamCommunication,
		Adaptability:      a.Adaptability,
		Consistency:       a.Consistency,
		Form:              a.Form,
	}
}

// AthleteLookup reads the current attributes of roster members. Members the
// lookup cannot resolve are left out of the averages.
type AthleteLookup interface {
	LookupAthletes(ids []string) (map[string]AthleteSnapshot, error)
}

// PlaceholderAggregates is the unimplemented-aggregate mode: roster averages
// are the fixed 70/65/75 values instead of member reads.
type PlaceholderAggregates struct{}

func (PlaceholderAggregates) LookupAthletes([]string) (map[string]AthleteSnapshot, error) {
	return nil, nil
}

// SnapshotLookup is an in-memory AthleteLookup.
type SnapshotLookup map[string]AthleteSnapshot

func (s SnapshotLookup) LookupAthletes(ids []string) (map[string]AthleteSnapshot, error) {
	out := make(map[string]AthleteSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := s[id]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

// NewTeam returns an empty team owned by ownerID.
func NewTeam(id, ownerID, name, logoURI string, now int64) *models.Team {
	return &models.Team{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Slug:        slug.Make(name),
		LogoURI:     logoURI,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// AddToRoster places athleteID at position. The athlete's own team reference
// is the caller's to update.
func AddToRoster(team *models.Team, athleteID, position string, lookup AthleteLookup, now int64) error {
	if len(team.Roster) >= models.MaxRosterSize {
		return ErrRosterFull
	}
	for _, p := range team.Roster {
		if p.Position == position {
			return fmt.Errorf("position %q: %w", position, ErrPositionFilled)
		}
	}

	stats, err := computeStatistics(team, append(team.Roster[:len(team.Roster):len(team.Roster)], models.RosterPosition{
		AthleteID: athleteID,
		Position:  position,
		AddedAt:   now,
	}), lookup, now)
	if err != nil {
		return err
	}

	team.Roster = append(team.Roster, models.RosterPosition{
		AthleteID: athleteID,
		Position:  position,
		AddedAt:   now,
	})
	team.Statistics = stats
	team.LastUpdated = now
	return nil
}

// RemoveFromRoster drops athleteID from the roster.
func RemoveFromRoster(team *models.Team, athleteID string, lookup AthleteLookup, now int64) error {
	idx := team.RosterEntry(athleteID)
	if idx < 0 {
		return ErrNotOnTeam
	}

	remaining := make(models.RosterSlice, 0, len(team.Roster)-1)
	remaining = append(remaining, team.Roster[:idx]...)
	remaining = append(remaining, team.Roster[idx+1:]...)

	stats, err := computeStatistics(team, remaining, lookup, now)
	if err != nil {
		return err
	}

	team.Roster = remaining
	team.Statistics = stats
	team.LastUpdated = now
	return nil
}

// RecomputeStatistics refreshes the averaged attributes and synergy score.
// Synergy grows with roster tenure, so it is re-run periodically as well as
// on every roster change.
func RecomputeStatistics(team *models.Team, lookup AthleteLookup, now int64) error {
	stats, err := computeStatistics(team, team.Roster, lookup, now)
	if err != nil {
		return err
	}
	team.Statistics = stats
	return nil
}

func computeStatistics(team *models.Team, roster models.RosterSlice, lookup AthleteLookup, now int64) (models.TeamStatistics, error) {
	stats := team.Statistics
	if len(roster) == 0 {
		stats.AvgMechanical = 0
		stats.AvgGameKnowledge = 0
		stats.AvgTeamCommunication = 0
		stats.SynergyScore = 0
		return stats, nil
	}

	mech, gk, comms, err := rosterAverages(roster, lookup)
	if err != nil {
		return stats, err
	}
	stats.AvgMechanical = mech
	stats.AvgGameKnowledge = gk
	stats.AvgTeamCommunication = comms

	var tenure int64
	for _, p := range roster {
		tenure += now - p.AddedAt
	}
	days := tenure / int64(len(roster)) / secondsPerDay
	if days < 0 {
		days = 0
	}
	stats.SynergyScore = uint8(baseSynergy + min(maxSynergyBonus, days/2))
	return stats, nil
}

func rosterAverages(roster models.RosterSlice, lookup AthleteLookup) (uint8, uint8, uint8, error) {
	if _, placeholder := lookup.(PlaceholderAggregates); placeholder || lookup == nil {
		return placeholderMech, placeholderGK, placeholderComms, nil
	}
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.AthleteID
	}
	snaps, err := lookup.LookupAthletes(ids)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("lookup roster athletes: %w", err)
	}
	if len(snaps) == 0 {
		return 0, 0, 0, nil
	}

	var mech, gk, comms int
	for _, s := range snaps {
		mech += int(s.Mechanical)
		gk += int(s.GameKnowledge)
		comms += int(s.TeamCommunication)
	}
	n := len(snaps)
	return uint8(mech / n), uint8(gk / n), uint8(comms / n), nil
}

// TeamMatchInput is one match outcome from the team's point of view.
type TeamMatchInput struct {
	MatchID      string
	OpponentID   string
	Win          bool
	Score        [2]uint8
	TournamentID *string
}

// RecordTeamMatch bumps the win/loss counters and appends to the team's
// bounded match history.
func RecordTeamMatch(team *models.Team, in TeamMatchInput, now int64) {
	team.Statistics.MatchesPlayed = saturatingAddU32(team.Statistics.MatchesPlayed, 1)
	if in.Win {
		team.Statistics.Wins = saturatingAddU32(team.Statistics.Wins, 1)
	} else {
		team.Statistics.Losses = saturatingAddU32(team.Statistics.Losses, 1)
	}

	team.MatchHistory = append(team.MatchHistory, models.TeamMatchResult{
		MatchID:      in.MatchID,
		Timestamp:    now,
		OpponentID:   in.OpponentID,
		Win:          in.Win,
		Score:        in.Score,
		TournamentID: in.TournamentID,
	})
	if n := len(team.MatchHistory); n > models.MaxTeamMatchHistory {
		team.MatchHistory = append(team.MatchHistory[:0:0], team.MatchHistory[n-models.MaxTeamMatchHistory:]...)
	}

	team.LastUpdated = now
}
