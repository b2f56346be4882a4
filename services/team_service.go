package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dream-league-engine/metrics"
	"dream-league-engine/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TeamService struct {
	DB      *gorm.DB
	Metrics *metrics.Recorder
	Now     func() time.Time

	// PlaceholderAverages switches roster averages to the fixed
	// unimplemented-aggregate values instead of reading member athletes.
	PlaceholderAverages bool
}

func NewTeamService(db *gorm.DB, rec *metrics.Recorder, placeholderAverages bool) *TeamService {
	return &TeamService{DB: db, Metrics: rec, Now: time.Now, PlaceholderAverages: placeholderAverages}
}

// Create makes an empty team. Team names are unique per owner.
func (s *TeamService) Create(ownerID, name, logoURI string) (*models.Team, error) {
	if ownerID == "" || name == "" || slug.Make(name) == "" {
		return nil, fmt.Errorf("owner and name are required: %w", ErrInvalidParameters)
	}

	team := NewTeam(uuid.NewString(), ownerID, name, logoURI, unixNow(s.Now))
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Team{}).
			Where("owner_id = ? AND slug = ?", ownerID, team.Slug).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("team %q: %w", team.Slug, ErrAlreadyExists)
		}
		if err := tx.Create(team).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("team %q: %w", team.Slug, ErrAlreadyExists)
			}
			return err
		}
		return nil
	})

	s.Metrics.RecordOperation("team", "create", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TEAM] Create %q for %s failed: %v", name, ownerID, err)
		return nil, err
	}
	log.Printf("✅ [TEAM] Created %s (%s) for %s", team.ID, team.Slug, ownerID)
	return team, nil
}

func (s *TeamService) Get(id string) (*models.Team, error) {
	return findByID[models.Team](s.DB, id)
}

// AddAthlete puts one of the caller's athletes on one of the caller's teams
// and links the athlete back to the team.
func (s *TeamService) AddAthlete(callerID, teamID, athleteID, position string) (*models.Team, error) {
	if position == "" {
		return nil, fmt.Errorf("position is required: %w", ErrInvalidParameters)
	}

	var out *models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockByID[models.Team](tx, teamID)
		if err != nil {
			return err
		}
		if err := authorize(team.OwnerID, callerID); err != nil {
			return err
		}
		athlete, err := lockByID[models.Athlete](tx, athleteID)
		if err != nil {
			return err
		}
		if err := authorize(athlete.OwnerID, callerID); err != nil {
			return err
		}
		if athlete.TeamID != nil {
			return ErrAthleteAlreadyOnTeam
		}

		if err := AddToRoster(team, athlete.ID, position, rosterLookup(tx, s.PlaceholderAverages), unixNow(s.Now)); err != nil {
			return err
		}
		athlete.TeamID = &team.ID
		athlete.LastUpdated = team.LastUpdated

		if err := tx.Save(athlete).Error; err != nil {
			return err
		}
		if err := tx.Save(team).Error; err != nil {
			return err
		}
		out = team
		return nil
	})

	s.Metrics.RecordOperation("team", "add_athlete", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TEAM] Add %s to %s as %q failed: %v", athleteID, teamID, position, err)
		return nil, err
	}
	log.Printf("✅ [TEAM] %s joined %s as %s (roster %d/%d)", athleteID, teamID, position, len(out.Roster), models.MaxRosterSize)
	return out, nil
}

// RemoveAthlete drops an athlete from the roster and clears its team link.
func (s *TeamService) RemoveAthlete(callerID, teamID, athleteID string) (*models.Team, error) {
	var out *models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockByID[models.Team](tx, teamID)
		if err != nil {
			return err
		}
		if err := authorize(team.OwnerID, callerID); err != nil {
			return err
		}
		if err := RemoveFromRoster(team, athleteID, rosterLookup(tx, s.PlaceholderAverages), unixNow(s.Now)); err != nil {
			return err
		}

		athlete, err := lockByID[models.Athlete](tx, athleteID)
		switch {
		case errors.Is(err, ErrNotFound):
			log.Printf("⚠️ [TEAM] Roster entry %s on %s had no athlete record", athleteID, teamID)
		case err != nil:
			return err
		case athlete.TeamID != nil && *athlete.TeamID == team.ID:
			athlete.TeamID = nil
			athlete.LastUpdated = team.LastUpdated
			if err := tx.Save(athlete).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(team).Error; err != nil {
			return err
		}
		out = team
		return nil
	})

	s.Metrics.RecordOperation("team", "remove_athlete", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TEAM] Remove %s from %s failed: %v", athleteID, teamID, err)
		return nil, err
	}
	log.Printf("✅ [TEAM] %s left %s", athleteID, teamID)
	return out, nil
}

// RecordMatch records a friendly (non-bracket) match for the team.
func (s *TeamService) RecordMatch(callerID, teamID string, in TeamMatchInput) (*models.Team, error) {
	if in.MatchID == "" || in.OpponentID == "" {
		return nil, fmt.Errorf("match and opponent are required: %w", ErrInvalidParameters)
	}

	var out *models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockByID[models.Team](tx, teamID)
		if err != nil {
			return err
		}
		if err := authorize(team.OwnerID, callerID); err != nil {
			return err
		}
		RecordTeamMatch(team, in, unixNow(s.Now))
		if err := tx.Save(team).Error; err != nil {
			return err
		}
		out = team
		return nil
	})

	s.Metrics.RecordOperation("team", "record_match", resultLabel(err))
	if err != nil {
		log.Printf("❌ [TEAM] Record match %s for %s failed: %v", in.MatchID, teamID, err)
		return nil, err
	}
	return out, nil
}

// SetLogo points the team at a new logo.
func (s *TeamService) SetLogo(callerID, teamID, uri string) (*models.Team, error) {
	var out *models.Team
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockByID[models.Team](tx, teamID)
		if err != nil {
			return err
		}
		if err := authorize(team.OwnerID, callerID); err != nil {
			return err
		}
		team.LogoURI = uri
		team.LastUpdated = unixNow(s.Now)
		if err := tx.Save(team).Error; err != nil {
			return err
		}
		out = team
		return nil
	})

	s.Metrics.RecordOperation("team", "set_logo", resultLabel(err))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Performance rates the team from its current roster.
func (s *TeamService) Performance(teamID string) (TeamPerformance, error) {
	team, err := findByID[models.Team](s.DB, teamID)
	if err != nil {
		return TeamPerformance{}, err
	}
	ids := make([]string, len(team.Roster))
	for i, p := range team.Roster {
		ids[i] = p.AthleteID
	}
	snaps, err := dbAthleteLookup{tx: s.DB}.LookupAthletes(ids)
	if err != nil {
		return TeamPerformance{}, err
	}

	athletes := make([]AthleteSnapshot, 0, len(snaps))
	for _, id := range ids {
		if snap, ok := snaps[id]; ok {
			athletes = append(athletes, snap)
		}
	}
	return CalculateTeamPerformance(team, athletes), nil
}

// RefreshSynergy recomputes aggregates for every team with a roster.
// Synergy depends on elapsed time, so this runs on a schedule.
func (s *TeamService) RefreshSynergy(ctx context.Context) (int, error) {
	var ids []string
	if err := s.DB.WithContext(ctx).Model(&models.Team{}).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("list teams: %w", err)
	}

	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		changed := false
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			team, err := lockByID[models.Team](tx, id)
			if err != nil {
				return err
			}
			if len(team.Roster) == 0 {
				return nil
			}
			before := team.Statistics
			if err := RecomputeStatistics(team, rosterLookup(tx, s.PlaceholderAverages), unixNow(s.Now)); err != nil {
				return err
			}
			if team.Statistics == before {
				return nil
			}
			changed = true
			return tx.Save(team).Error
		})
		if err != nil {
			return refreshed, fmt.Errorf("refresh team %s: %w", id, err)
		}
		if changed {
			refreshed++
		}
	}
	return refreshed, nil
}
