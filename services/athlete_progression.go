// services/athlete_progression.go
package services

import (
	"fmt"

	"dream-league-engine/models"
)

const (
	MaxPerformanceHistory = 5

	standardFormStart  = 70
	exclusiveFormStart = 80

	AbilityClutchFactor     = "Clutch Factor"
	AbilityPerfectExecution = "Perfect Execution"
	AbilityShotCaller       = "Shot Caller"
)

// RarityThresholds: minimum potential per tier, checked highest first.
var RarityThresholds = []struct {
	Rarity       models.Rarity
	MinPotential uint8
}{
	{models.RarityLegendary, 90},
	{models.RarityEpic, 80},
	{models.RarityRare, 70},
	{models.RarityUncommon, 60},
}

// RarityFor maps potential to a rarity tier. Exclusive athletes never rank
// below rare.
func RarityFor(potential uint8, exclusive bool) models.Rarity {
	for _, t := range RarityThresholds {
		if potential >= t.MinPotential {
			if exclusive && t.MinPotential < 70 {
				break
			}
			return t.Rarity
		}
	}
	if exclusive {
		return models.RarityRare
	}
	return models.RarityCommon
}

// NewAthlete carries everything needed to initialise an athlete record.
type NewAthlete struct {
	ID               string
	OwnerID          string
	CollectibleID    string
	Name             string
	Position         string
	URI              string
	GameSpecificData []byte

	// Exclusive athletes are minted by a verified creator.
	Exclusive   bool
	CreatorID   *string
	CreatorName string
	Predefined  *models.AthleteStats
}

// InitializeAthlete builds a fresh athlete with randomised starting stats.
func InitializeAthlete(in NewAthlete, now int64) *models.Athlete {
	a := &models.Athlete{
		ID:                 in.ID,
		OwnerID:            in.OwnerID,
		CollectibleID:      in.CollectibleID,
		Name:               in.Name,
		Position:           in.Position,
		URI:                in.URI,
		GameSpecificData:   in.GameSpecificData,
		IsExclusive:        in.Exclusive,
		SpecialAbilities:   nil,
		PerformanceHistory: nil,
		CreatedAt:          now,
		LastUpdated:        now,
	}

	switch {
	case !in.Exclusive:
		rollAttributes(a, now, 50)
		a.Form = standardFormStart
		a.Potential = 50 + uint8(PseudoRandom(now, 5)%51) // 50-100
	case in.Predefined != nil:
		p := in.Predefined
		a.Mechanical = p.Mechanical
		a.GameKnowledge = p.GameKnowledge
		a.TeamCommunication = p.TeamCommunication
		a.Adaptability = p.Adaptability
		a.Consistency = p.Consistency
		a.Form = p.Form
		a.Potential = p.Potential
	default:
		rollAttributes(a, now, 60)
		a.Form = exclusiveFormStart
		a.Potential = 70 + uint8(PseudoRandom(now, 5)%31) // 70-100
	}

	if in.Exclusive {
		a.CreatorID = in.CreatorID
		a.SpecialAbilities = append(a.SpecialAbilities, models.SpecialAbility{
			Name:  fmt.Sprintf("%s Special", in.CreatorName),
			Value: 75 + uint8(PseudoRandom(now, 6)%26), // 75-100
		})
	}

	a.Rarity = RarityFor(a.Potential, in.Exclusive)
	return a
}

// rollAttributes draws the five core attributes in [base, base+30], one seed
// per attribute so the draws are independent.
func rollAttributes(a *models.Athlete, now int64, base uint8) {
	a.Mechanical = base + uint8(PseudoRandom(now, 0)%31)
	a.GameKnowledge = base + uint8(PseudoRandom(now, 1)%31)
	a.TeamCommunication = base + uint8(PseudoRandom(now, 2)%31)
	a.Adaptability = base + uint8(PseudoRandom(now, 3)%31)
	a.Consistency = base + uint8(PseudoRandom(now, 4)%31)
}

// MatchResult is the outcome of one match for one athlete.
type MatchResult struct {
	MatchID   string
	Win       bool
	MVP       bool
	ExpGained uint32
	// Deltas in attribute order: mechanical, game knowledge, team
	// communication, adaptability, consistency.
	AttributeDeltas [5]int8
	FormDelta       int8
	Stats           []byte
}

// ApplyMatchResult folds a match outcome into the athlete's counters, stats
// and history, then runs the level-up checks.
func ApplyMatchResult(a *models.Athlete, r MatchResult, now int64) {
	a.LastUpdated = now

	a.MatchesPlayed = saturatingAddU32(a.MatchesPlayed, 1)
	if r.Win {
		a.Wins = saturatingAddU32(a.Wins, 1)
	}
	if r.MVP {
		a.MVPCount = saturatingAddU32(a.MVPCount, 1)
	}
	a.Experience = saturatingAddU32(a.Experience, r.ExpGained)

	for i, attr := range attributePointers(a) {
		*attr = BoundedAdjust(*attr, int(r.AttributeDeltas[i]))
	}
	a.Form = ClampForm(a.Form, int(r.FormDelta))

	a.PerformanceHistory = append(a.PerformanceHistory, models.MatchPerformance{
		MatchID:   r.MatchID,
		Timestamp: now,
		Win:       r.Win,
		MVP:       r.MVP,
		ExpGained: r.ExpGained,
		Stats:     r.Stats,
	})
	if n := len(a.PerformanceHistory); n > MaxPerformanceHistory {
		a.PerformanceHistory = append(a.PerformanceHistory[:0:0], a.PerformanceHistory[n-MaxPerformanceHistory:]...)
	}

	checkForLevelUps(a)
}

// Train improves one attribute. Sessions above intensity 70 cost form.
func Train(a *models.Athlete, kind models.TrainingType, intensity uint8, now int64) error {
	target := trainingTarget(a, kind)
	if target == nil {
		return fmt.Errorf("unknown training type %q: %w", kind, ErrInvalidParameters)
	}

	effectiveness := int(intensity) * int(a.Form) / 100
	if effectiveness > 255 {
		effectiveness = 255
	}
	randomFactor := int(PseudoRandom(now, 0)%5) - 2 // -2..+2
	improvement := effectiveness/20 + max(0, randomFactor)
	if improvement < 1 {
		improvement = 1
	}
	*target = BoundedAdjust(*target, improvement)

	if intensity > 70 {
		fatigue := (intensity - 70) / 10
		form := uint8(0)
		if a.Form > fatigue {
			form = a.Form - fatigue
		}
		a.Form = max(1, form)
	}

	a.LastUpdated = now
	return nil
}

// GrantAbility adds a named ability. Names are unique per athlete.
func GrantAbility(a *models.Athlete, name string, value uint8) error {
	if a.HasAbility(name) {
		return fmt.Errorf("%q: %w", name, ErrDuplicateAbility)
	}
	a.SpecialAbilities = append(a.SpecialAbilities, models.SpecialAbility{Name: name, Value: value})
	return nil
}

// checkForLevelUps runs every unlock rule; the rules are independent.
func checkForLevelUps(a *models.Athlete) {
	if a.MatchesPlayed%10 == 0 && a.Wins > a.MatchesPlayed/2 && a.Potential < MaxAttribute {
		a.Potential++
	}

	if a.MVPCount >= 5 && !a.HasAbility(AbilityClutchFactor) {
		a.SpecialAbilities = append(a.SpecialAbilities, models.SpecialAbility{
			Name:  AbilityClutchFactor,
			Value: saturatingAddU8(50, int(min(a.MVPCount/2, 255))),
		})
	}

	if a.Mechanical >= 90 && !a.HasAbility(AbilityPerfectExecution) {
		a.SpecialAbilities = append(a.SpecialAbilities, models.SpecialAbility{
			Name:  AbilityPerfectExecution,
			Value: a.Mechanical - 30,
		})
	}

	if a.TeamCommunication >= 85 && a.MatchesPlayed >= 20 && !a.HasAbility(AbilityShotCaller) {
		a.SpecialAbilities = append(a.SpecialAbilities, models.SpecialAbility{
			Name:  AbilityShotCaller,
			Value: 70 + (a.TeamCommunication-85)/3,
		})
	}
}

func attributePointers(a *models.Athlete) [5]*uint8 {
	return [5]*uint8{&a.Mechanical, &a.GameKnowledge, &a.TeamCommunication, &a.Adaptability, &a.Consistency}
}

func trainingTarget(a *models.Athlete, kind models.TrainingType) *uint8 {
	switch kind {
	case models.TrainingMechanical:
		return &a.Mechanical
	case models.TrainingGameKnowledge:
		return &a.GameKnowledge
	case models.TrainingTeamCommunication:
		return &a.TeamCommunication
	case models.TrainingAdaptability:
		return &a.Adaptability
	case models.TrainingConsistency:
		return &a.Consistency
	}
	return nil
}
