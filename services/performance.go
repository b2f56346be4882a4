// services/performance.go
package services

import "dream-league-engine/models"

const defaultPerformanceForm = 50

// TeamPerformance is a team's synergy-adjusted rating.
type TeamPerformance struct {
	Mechanical        float64 `json:"mechanical"`
	GameKnowledge     float64 `json:"game_knowledge"`
	TeamCommunication float64 `json:"team_communication"`
	Adaptability      float64 `json:"adaptability"`
	Consistency       float64 `json:"consistency"`
	Form              float64 `json:"form"`
	Synergy           uint8   `json:"synergy"`
	Overall           float64 `json:"overall"`
}

// CalculateTeamPerformance averages the given athletes and scales the five
// attributes by the team's synergy: 0 synergy is x0.8, 100 is x1.2. Form is
// not scaled. An athlete at zero form counts as 50.
func CalculateTeamPerformance(team *models.Team, athletes []AthleteSnapshot) TeamPerformance {
	var sum [6]float64
	for _, a := range athletes {
		form := a.Form
		if form == 0 {
			form = defaultPerformanceForm
		}
		sum[0] += float64(a.Mechanical)
		sum[1] += float64(a.GameKnowledge)
		sum[2] += float64(a.TeamCommunication)
		sum[3] += float64(a.Adaptability)
		sum[4] += float64(a.Consistency)
		sum[5] += float64(form)
	}
	n := float64(max(len(athletes), 1))

	synergy := team.Statistics.SynergyScore
	mult := 0.8 + float64(synergy)/100*0.4

	p := TeamPerformance{
		Mechanical:        sum[0] / n * mult,
		GameKnowledge:     sum[1] / n * mult,
		TeamCommunication: sum[2] / n * mult,
		Adaptability:      sum[3] / n * mult,
		Consistency:       sum[4] / n * mult,
		Form:              sum[5] / n,
		Synergy:           synergy,
	}
	p.Overall = p.Mechanical*0.25 +
		p.GameKnowledge*0.25 +
		p.TeamCommunication*0.2 +
		p.Adaptability*0.15 +
		p.Consistency*0.1 +
		p.Form*0.05
	return p
}
