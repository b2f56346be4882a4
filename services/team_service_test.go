package services

import (
	"context"
	"errors"
	"testing"

	"dream-league-engine/models"
)

func createAthletes(t *testing.T, ts testServices, owner string, n int) []*models.Athlete {
	t.Helper()
	out := make([]*models.Athlete, n)
	for i := range out {
		a, err := ts.athletes.Create(owner, CreateAthleteInput{Name: "Player"})
		if err != nil {
			t.Fatalf("create athlete: %v", err)
		}
		out[i] = a
	}
	return out
}

func TestTeamServiceRoster(t *testing.T) {
	ts := newTestServices(t)

	team, err := ts.teams.Create("owner-1", "Night Owls", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := ts.teams.Create("owner-1", "night owls", ""); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for same slug, got %v", err)
	}
	if _, err := ts.teams.Create("owner-2", "Night Owls", ""); err != nil {
		t.Fatalf("another owner may reuse the name: %v", err)
	}

	athletes := createAthletes(t, ts, "owner-1", 2)
	if _, err := ts.teams.AddAthlete("owner-1", team.ID, athletes[0].ID, "entry"); err != nil {
		t.Fatalf("add: %v", err)
	}
	team, err = ts.teams.AddAthlete("owner-1", team.ID, athletes[1].ID, "support")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	wantMech := uint8((int(athletes[0].Mechanical) + int(athletes[1].Mechanical)) / 2)
	if team.Statistics.AvgMechanical != wantMech {
		t.Fatalf("expected averaged mechanical %d, got %d", wantMech, team.Statistics.AvgMechanical)
	}
	if team.Statistics.SynergyScore != 60 {
		t.Fatalf("expected fresh synergy 60, got %d", team.Statistics.SynergyScore)
	}

	linked, _ := ts.athletes.Get(athletes[0].ID)
	if linked.TeamID == nil || *linked.TeamID != team.ID {
		t.Fatalf("athlete not linked to team")
	}

	other, _ := ts.teams.Create("owner-1", "Day Hawks", "")
	if _, err := ts.teams.AddAthlete("owner-1", other.ID, athletes[0].ID, "entry"); !errors.Is(err, ErrAthleteAlreadyOnTeam) {
		t.Fatalf("expected ErrAthleteAlreadyOnTeam, got %v", err)
	}

	if _, err := ts.teams.RemoveAthlete("owner-1", team.ID, athletes[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	unlinked, _ := ts.athletes.Get(athletes[0].ID)
	if unlinked.TeamID != nil {
		t.Fatalf("athlete still linked after removal")
	}
	if _, err := ts.teams.RemoveAthlete("owner-1", team.ID, athletes[0].ID); !errors.Is(err, ErrNotOnTeam) {
		t.Fatalf("expected ErrNotOnTeam, got %v", err)
	}

	if _, err := ts.teams.AddAthlete("owner-1", other.ID, athletes[0].ID, "entry"); err != nil {
		t.Fatalf("released athlete should join another team: %v", err)
	}
}

func TestTeamServiceRosterRules(t *testing.T) {
	ts := newTestServices(t)
	team, _ := ts.teams.Create("owner-1", "Owls", "")
	athletes := createAthletes(t, ts, "owner-1", 6)

	positions := []string{"entry", "support", "awper", "lurker", "igl"}
	for i, pos := range positions {
		if _, err := ts.teams.AddAthlete("owner-1", team.ID, athletes[i].ID, pos); err != nil {
			t.Fatalf("add %s: %v", pos, err)
		}
	}
	if _, err := ts.teams.AddAthlete("owner-1", team.ID, athletes[5].ID, "coach"); !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
	spare, _ := ts.athletes.Get(athletes[5].ID)
	if spare.TeamID != nil {
		t.Fatalf("rejected athlete must not be linked")
	}

	_, _ = ts.teams.RemoveAthlete("owner-1", team.ID, athletes[0].ID)
	if _, err := ts.teams.AddAthlete("owner-1", team.ID, athletes[5].ID, "support"); !errors.Is(err, ErrPositionFilled) {
		t.Fatalf("expected ErrPositionFilled, got %v", err)
	}

	foreign := createAthletes(t, ts, "owner-2", 1)[0]
	if _, err := ts.teams.AddAthlete("owner-1", team.ID, foreign.ID, "entry"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for someone else's athlete, got %v", err)
	}
	if _, err := ts.teams.AddAthlete("owner-2", team.ID, foreign.ID, "entry"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for someone else's team, got %v", err)
	}
}

func TestTeamServicePlaceholderAverages(t *testing.T) {
	ts := newTestServices(t)
	ts.teams.PlaceholderAverages = true

	team, _ := ts.teams.Create("owner-1", "Owls", "")
	a := createAthletes(t, ts, "owner-1", 1)[0]
	team, err := ts.teams.AddAthlete("owner-1", team.ID, a.ID, "entry")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	s := team.Statistics
	if s.AvgMechanical != 70 || s.AvgGameKnowledge != 65 || s.AvgTeamCommunication != 75 {
		t.Fatalf("expected placeholder averages, got %+v", s)
	}
}

func TestTeamServiceRefreshSynergy(t *testing.T) {
	ts := newTestServices(t)
	team, _ := ts.teams.Create("owner-1", "Owls", "")
	_, _ = ts.teams.Create("owner-1", "Empty", "")
	for i, a := range createAthletes(t, ts, "owner-1", 2) {
		if _, err := ts.teams.AddAthlete("owner-1", team.ID, a.ID, []string{"entry", "support"}[i]); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	ts.clock.Advance(20 * secondsPerDay)
	n, err := ts.teams.RefreshSynergy(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one team refreshed, got %d", n)
	}
	stored, _ := ts.teams.Get(team.ID)
	if stored.Statistics.SynergyScore != 70 {
		t.Fatalf("expected synergy 70 after 20 days, got %d", stored.Statistics.SynergyScore)
	}

	n, err = ts.teams.RefreshSynergy(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second refresh should change nothing, got n=%d err=%v", n, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ts.teams.RefreshSynergy(ctx); err == nil {
		t.Fatalf("expected canceled context to stop the refresh")
	}
}

func TestTeamServiceMatchesAndPerformance(t *testing.T) {
	ts := newTestServices(t)
	team, _ := ts.teams.Create("owner-1", "Owls", "")
	a := createAthletes(t, ts, "owner-1", 1)[0]
	_, _ = ts.teams.AddAthlete("owner-1", team.ID, a.ID, "entry")

	team, err := ts.teams.RecordMatch("owner-1", team.ID, TeamMatchInput{MatchID: "scrim-1", OpponentID: "team-x", Win: true, Score: [2]uint8{13, 7}})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if team.Statistics.Wins != 1 || len(team.MatchHistory) != 1 {
		t.Fatalf("unexpected team after match %+v", team.Statistics)
	}
	if _, err := ts.teams.RecordMatch("owner-2", team.ID, TeamMatchInput{MatchID: "x", OpponentID: "y"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	perf, err := ts.teams.Performance(team.ID)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if perf.Synergy != 60 || !approx(perf.Mechanical, float64(a.Mechanical)*(0.8+0.6*0.4)) {
		t.Fatalf("unexpected performance %+v for athlete mech %d", perf, a.Mechanical)
	}

	team, err = ts.teams.SetLogo("owner-1", team.ID, "https://cdn.example/logo.png")
	if err != nil || team.LogoURI != "https://cdn.example/logo.png" {
		t.Fatalf("set logo: %v", err)
	}
}
