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

type TournamentService struct {
	DB      *gorm.DB
	Metrics *metrics.Recorder
	Now     func() time.Time
}

func NewTournamentService(db *gorm.DB, rec *metrics.Recorder) *TournamentService {
	return &TournamentService{DB: db, Metrics: rec, Now: time.Now}
}

// CreateTournamentInput holds the bracket parameters.
type CreateTournamentInput struct {
	Name      string `json:"name"`
	EntryFee  uint64 `json:"entry_fee"`
	StartTime int64  `json:"start_time"`
	MaxTeams  uint8  `json:"max_teams"`
}

// Create opens a tournament for registration. The caller becomes its authority.
func (s *TournamentService) Create(authorityID string, in CreateTournamentInput) (*models.Tournament, error) {
	if authorityID == "" || in.Name == "" {
		return nil, fmt.Errorf("authority and name are required: %w", ErrInvalidParameters)
	}
	t, err := NewTournament(uuid.NewString(), authorityID, in.Name, in.EntryFee, in.StartTime, in.MaxTeams, unixNow(s.Now))
	if err == nil {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			var existing int64
			if err := tx.Model(&models.Tournament{}).
				Where("authority_id = ? AND slug = ?", authorityID, t.Slug).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return fmt.Errorf("tournament %q: %w", t.Slug, ErrAlreadyExists)
			}
			if err := tx.Create(t).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("tournament %q: %w", t.Slug, ErrAlreadyExists)
				}
				return err
			}
			return nil
		})
	}

	s.Metrics.RecordOperation("tournament", "create", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] Create %q by %s failed: %v", in.Name, authorityID, err)
		return nil, err
	}
	log.Printf("✅ [TOURNAMENT] Created %s (%s, %d teams, fee %d)", t.ID, t.Slug, t.MaxTeams, t.EntryFee)
	return t, nil
}

func (s *TournamentService) Get(id string) (*models.Tournament, error) {
	return findByID[models.Tournament](s.DB, id)
}

// Register enters one of the caller's teams.
func (s *TournamentService) Register(callerID, tournamentID, teamID string) (*models.Tournament, error) {
	var out *models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := findByID[models.Team](tx, teamID)
		if err != nil {
			return err
		}
		if err := authorize(team.OwnerID, callerID); err != nil {
			return err
		}
		t, err := lockByID[models.Tournament](tx, tournamentID)
		if err != nil {
			return err
		}
		if err := RegisterTeam(t, team.ID, unixNow(s.Now)); err != nil {
			return err
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})

	s.Metrics.RecordOperation("tournament", "register", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] Register %s in %s failed: %v", teamID, tournamentID, err)
		return nil, err
	}
	log.Printf("✅ [TOURNAMENT] %s registered in %s (%d/%d, pool %d)", teamID, tournamentID, len(out.RegisteredTeams), out.MaxTeams, out.PrizePool)
	if out.Status == models.TournamentInProgress && len(out.RegisteredTeams) == int(out.MaxTeams) {
		log.Printf("🏁 [TOURNAMENT] %s is full, %d round-one matches seeded", tournamentID, len(out.Matches))
	}
	return out, nil
}

// RecordResult records a bracket result reported by the tournament authority.
// Both teams' match records are updated in the same transaction, and the
// champion's tournament wins once the final is in.
func (s *TournamentService) RecordResult(callerID, tournamentID string, o MatchOutcome) (*models.Tournament, error) {
	if o.WinnerID == "" || o.LoserID == "" || o.WinnerID == o.LoserID {
		return nil, fmt.Errorf("winner and loser must be two different teams: %w", ErrInvalidParameters)
	}

	var out *models.Tournament
	completed := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := lockByID[models.Tournament](tx, tournamentID)
		if err != nil {
			return err
		}
		if err := authorize(t.AuthorityID, callerID); err != nil {
			return err
		}

		now := unixNow(s.Now)
		m, err := RecordMatchResult(t, o, now)
		if err != nil {
			return err
		}

		tournamentRef := t.ID
		sides := []struct {
			teamID, opponentID string
			win                bool
			score              [2]uint8
		}{
			{o.WinnerID, o.LoserID, true, o.Score},
			{o.LoserID, o.WinnerID, false, [2]uint8{o.Score[1], o.Score[0]}},
		}
		for _, side := range sides {
			team, err := lockByID[models.Team](tx, side.teamID)
			if errors.Is(err, ErrNotFound) {
				log.Printf("⚠️ [TOURNAMENT] Team %s in %s has no record, skipping match history", side.teamID, t.ID)
				continue
			}
			if err != nil {
				return err
			}
			RecordTeamMatch(team, TeamMatchInput{
				MatchID:      fmt.Sprintf("%s:%s", t.ID, m.MatchID),
				OpponentID:   side.opponentID,
				Win:          side.win,
				Score:        side.score,
				TournamentID: &tournamentRef,
			}, now)
			if t.Status == models.TournamentCompleted && side.win {
				team.Statistics.TournamentWins = saturatingAddU32(team.Statistics.TournamentWins, 1)
			}
			if err := tx.Save(team).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(t).Error; err != nil {
			return err
		}
		completed = t.Status == models.TournamentCompleted
		out = t
		return nil
	})

	s.Metrics.RecordOperation("tournament", "record_result", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] Result %s over %s in %s failed: %v", o.WinnerID, o.LoserID, tournamentID, err)
		return nil, err
	}
	log.Printf("✅ [TOURNAMENT] %s beat %s in %s", o.WinnerID, o.LoserID, tournamentID)
	if completed {
		s.Metrics.RecordTournamentCompleted()
		log.Printf("🏆 [TOURNAMENT] %s completed, champion %s, prize pool %d", tournamentID, o.WinnerID, out.PrizePool)
	}
	return out, nil
}

// Cancel is an admin action outside the bracket state machine.
func (s *TournamentService) Cancel(tournamentID string) (*models.Tournament, error) {
	var out *models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := lockByID[models.Tournament](tx, tournamentID)
		if err != nil {
			return err
		}
		if err := CancelTournament(t, unixNow(s.Now)); err != nil {
			return err
		}
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})

	s.Metrics.RecordOperation("tournament", "cancel", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] Cancel %s failed: %v", tournamentID, err)
		return nil, err
	}
	log.Printf("✅ [TOURNAMENT] %s canceled with %d registered, pool %d held for settlement", tournamentID, len(out.RegisteredTeams), out.PrizePool)
	return out, nil
}
