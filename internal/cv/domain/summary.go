package domain

import (
	"time"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

// Portfolio is every section of one actor's CV as fetched.
type Portfolio struct {
	Profiles     []dash.Record[Profile]
	Experiences  []dash.Record[Experience]
	Educations   []dash.Record[Education]
	Skills       []dash.Record[Skill]
	Projects     []dash.Record[Project]
	Achievements []dash.Record[Achievement]
}

// Summary is the builder header.
type Summary struct {
	Completeness      int            `json:"completeness"`
	Missing           []string       `json:"missing"`
	YearsOfExperience int            `json:"years_of_experience"`
	Counts            map[string]int `json:"counts"`
	SkillsByCategory  map[string]int `json:"skills_by_category"`
}

// CurrentProfile is the most recently created profile. Fetches order by
// created_at descending, so that is the head of the slice; later edits to an
// older profile do not promote it.
func (p Portfolio) CurrentProfile() Profile {
	if len(p.Profiles) == 0 {
		return Profile{}
	}
	return p.Profiles[0].Data
}

func (p Portfolio) Snapshot() metrics.Snapshot {
	prof := p.CurrentProfile()
	return metrics.Snapshot{
		Profile: metrics.Profile{
			FullName: prof.FullName,
			Headline: prof.Headline,
			Summary:  prof.Summary,
			Email:    prof.Email,
			Phone:    prof.Phone,
			Location: prof.Location,
		},
		Experiences:  len(p.Experiences),
		Educations:   len(p.Educations),
		Skills:       len(p.Skills),
		Projects:     len(p.Projects),
		Achievements: len(p.Achievements),
	}
}

// Summarize fails with an invalid-date error when a stored experience can
// not be measured.
func Summarize(p Portfolio, now time.Time) (Summary, error) {
	spans := make([]metrics.Span, 0, len(p.Experiences))
	for _, r := range p.Experiences {
		spans = append(spans, r.Data.Span())
	}
	years, err := metrics.YearsOfExperience(spans, now)
	if err != nil {
		return Summary{}, err
	}

	snap := p.Snapshot()
	missing := metrics.Missing(snap)
	if missing == nil {
		missing = []string{}
	}
	return Summary{
		Completeness:      metrics.Completeness(snap),
		Missing:           missing,
		YearsOfExperience: years,
		Counts: map[string]int{
			"experiences":  snap.Experiences,
			"educations":   snap.Educations,
			"skills":       snap.Skills,
			"projects":     snap.Projects,
			"achievements": snap.Achievements,
		},
		SkillsByCategory: metrics.CountBy(p.Skills, func(r dash.Record[Skill]) string { return r.Data.Category }),
	}, nil
}
