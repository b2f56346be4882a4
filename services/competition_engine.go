// services/competition_engine.go
package services

import (
	"fmt"

	"dream-league-engine/models"

	"github.com/gosimple/slug"
)

// NewTournament opens registration for a single-elimination bracket.
func NewTournament(id, authorityID, name string, entryFee uint64, startTime int64, maxTeams uint8, now int64) (*models.Tournament, error) {
	if maxTeams < models.MinTournamentTeams || maxTeams > models.MaxTournamentTeams {
		return nil, fmt.Errorf("max teams %d out of range: %w", maxTeams, ErrInvalidParameters)
	}
	if startTime <= now {
		return nil, fmt.Errorf("start time must be in the future: %w", ErrInvalidParameters)
	}

	return &models.Tournament{
		ID:          id,
		AuthorityID: authorityID,
		Name:        name,
		Slug:        slug.Make(name),
		EntryFee:    entryFee,
		StartTime:   startTime,
		MaxTeams:    maxTeams,
		Status:      models.TournamentRegistration,
		CreatedAt:   now,
	}, nil
}

// RegisterTeam enters teamID and accrues its entry fee. The registration that
// fills the bracket starts the tournament and seeds round one.
func RegisterTeam(t *models.Tournament, teamID string, now int64) error {
	if t.Status != models.TournamentRegistration {
		return ErrTournamentClosed
	}
	if len(t.RegisteredTeams) >= int(t.MaxTeams) {
		return ErrTournamentFull
	}
	if t.IsRegistered(teamID) {
		return ErrAlreadyRegistered
	}

	t.RegisteredTeams = append(t.RegisteredTeams, teamID)
	t.PrizePool = saturatingAddU64(t.PrizePool, t.EntryFee)

	if len(t.RegisteredTeams) == int(t.MaxTeams) {
		t.Status = models.TournamentInProgress
		t.Matches = append(t.Matches, pairRound(t.RegisteredTeams, 1, now)...)
	}
	return nil
}

// pairRound seeds slot i against slot n-1-i. With an odd entrant count the
// middle slot is left unpaired.
func pairRound(entrants []string, round uint8, now int64) []models.TournamentMatch {
	n := len(entrants)
	matches := make([]models.TournamentMatch, 0, n/2)
	for i := 0; i < n/2; i++ {
		matches = append(matches, models.TournamentMatch{
			MatchID:   fmt.Sprintf("R%d_M%d", round, i+1),
			Timestamp: now,
			TeamA:     entrants[i],
			TeamB:     entrants[n-1-i],
			Round:     round,
		})
	}
	return matches
}

// MatchOutcome reports a finished bracket match.
type MatchOutcome struct {
	MatchID   string // informational; the match is located by its team pair
	WinnerID  string
	LoserID   string
	Score     [2]uint8
	MatchData []byte
}

// RecordMatchResult closes the bracket match between the two teams, opens the
// next round once every match of the current round is done, and completes the
// tournament when the final is decided.
func RecordMatchResult(t *models.Tournament, o MatchOutcome, now int64) (models.TournamentMatch, error) {
	if t.Status != models.TournamentInProgress {
		return models.TournamentMatch{}, ErrWrongStatus
	}

	idx := -1
	for i, m := range t.Matches {
		if (m.TeamA == o.WinnerID && m.TeamB == o.LoserID) || (m.TeamA == o.LoserID && m.TeamB == o.WinnerID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.TournamentMatch{}, ErrMatchNotFound
	}
	if t.Matches[idx].Completed {
		return models.TournamentMatch{}, ErrAlreadyRecorded
	}

	winner := o.WinnerID
	m := &t.Matches[idx]
	m.Winner = &winner
	m.Score = o.Score
	m.Completed = true
	m.Timestamp = now
	m.MatchData = o.MatchData
	recorded := *m

	advanceRound(t, recorded.Round, now)
	checkCompletion(t, now)
	return recorded, nil
}

// advanceRound re-scans the whole match list for round so re-running it after
// the next round exists is a no-op.
func advanceRound(t *models.Tournament, round uint8, now int64) {
	var winners []string
	for _, m := range t.Matches {
		if m.Round == round+1 {
			return
		}
		if m.Round != round {
			continue
		}
		if !m.Completed || m.Winner == nil {
			return
		}
		winners = append(winners, *m.Winner)
	}
	if len(winners) <= 1 {
		return
	}
	t.Matches = append(t.Matches, pairRound(winners, round+1, now)...)
}

func checkCompletion(t *models.Tournament, now int64) {
	var maxRound uint8
	for _, m := range t.Matches {
		maxRound = max(maxRound, m.Round)
	}

	var final []models.TournamentMatch
	for _, m := range t.Matches {
		if m.Round == maxRound {
			final = append(final, m)
		}
	}
	if len(final) == 1 && final[0].Completed {
		t.Status = models.TournamentCompleted
		end := now
		t.EndTime = &end
	}
}

// Champion returns the winner of a completed tournament's final.
func Champion(t *models.Tournament) (string, bool) {
	if t.Status != models.TournamentCompleted {
		return "", false
	}
	var final *models.TournamentMatch
	for i := range t.Matches {
		if final == nil || t.Matches[i].Round > final.Round {
			final = &t.Matches[i]
		}
	}
	if final == nil || final.Winner == nil {
		return "", false
	}
	return *final.Winner, true
}

// CancelTournament moves a live tournament to its alternate terminal state.
// The prize pool is kept as recorded; settlement happens elsewhere.
func CancelTournament(t *models.Tournament, now int64) error {
	switch t.Status {
	case models.TournamentRegistration, models.TournamentInProgress:
	default:
		return ErrWrongStatus
	}
	t.Status = models.TournamentCanceled
	end := now
	t.EndTime = &end
	return nil
}
