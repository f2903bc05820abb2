// Package domain holds the portfolio builder sections. Each section is its
// own record collection owned by the actor.
package domain

import (
	"strings"
	"time"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

const (
	KindProfile      = "cv_profile"
	KindExperiences  = "cv_experiences"
	KindEducations   = "cv_educations"
	KindSkills       = "cv_skills"
	KindProjects     = "cv_projects"
	KindAchievements = "cv_achievements"
)

type Profile struct {
	FullName string `json:"full_name" yaml:"full_name" validate:"max=120"`
	Headline string `json:"headline,omitempty" yaml:"headline,omitempty" validate:"max=160"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty" validate:"max=2000"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty" validate:"max=32"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty" validate:"omitempty,url"`
}

type Experience struct {
	Title          string `json:"title" yaml:"title" validate:"required"`
	Company        string `json:"company" yaml:"company" validate:"required"`
	EmploymentType string `json:"employment_type" yaml:"employment_type" validate:"required,oneof=full_time part_time contract freelance internship"`
	Location       string `json:"location,omitempty" yaml:"location,omitempty"`
	StartDate      string `json:"start_date" yaml:"start_date" validate:"required"`
	EndDate        string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Current        bool   `json:"current" yaml:"current"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Education struct {
	Institution string   `json:"institution" yaml:"institution" validate:"required"`
	Degree      string   `json:"degree" yaml:"degree" validate:"required"`
	Field       string   `json:"field,omitempty" yaml:"field,omitempty"`
	StartDate   string   `json:"start_date" yaml:"start_date" validate:"required"`
	EndDate     string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	GPA         *float64 `json:"gpa,omitempty" yaml:"gpa,omitempty" validate:"omitempty,gte=0,lte=4"`
}

type Skill struct {
	Name        string `json:"name" yaml:"name" validate:"required,max=60"`
	Category    string `json:"category" yaml:"category" validate:"required,oneof=language framework tool soft other"`
	Proficiency int    `json:"proficiency" yaml:"proficiency" validate:"required,min=1,max=5"`
}

type Project struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	URL          string   `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty" validate:"max=20"`
}

type Achievement struct {
	Title       string `json:"title" yaml:"title" validate:"required"`
	Issuer      string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func dateError(field string) error {
	return &dash.ValidationError{Field: field, Message: "must be a date formatted as YYYY-MM-DD or YYYY-MM"}
}

// checkSpan validates a start/end pair. An open end is allowed only when open is true.
func checkSpan(start, end string, open bool) error {
	from, err := metrics.ParseDate(start)
	if err != nil {
		return dateError("start_date")
	}
	if strings.TrimSpace(end) == "" {
		if open {
			return nil
		}
		return &dash.ValidationError{Field: "end_date", Message: "is required unless the position is current"}
	}
	to, err := metrics.ParseDate(end)
	if err != nil {
		return dateError("end_date")
	}
	if to.Before(from) {
		return &dash.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}
	return nil
}

// CheckExperience requires an end date unless the position is current.
func CheckExperience(e Experience) error {
	if e.Current {
		if strings.TrimSpace(e.EndDate) != "" {
			return &dash.ValidationError{Field: "end_date", Message: "must be empty for a current position"}
		}
		return checkSpan(e.StartDate, "", true)
	}
	return checkSpan(e.StartDate, e.EndDate, false)
}

// CheckEducation allows an open end for studies in progress.
func CheckEducation(e Education) error {
	return checkSpan(e.StartDate, e.EndDate, true)
}

func CheckAchievement(a Achievement) error {
	if strings.TrimSpace(a.Date) == "" {
		return nil
	}
	if _, err := metrics.ParseDate(a.Date); err != nil {
		return dateError("date")
	}
	return nil
}

// CheckDatePatch validates the format of any date keys in a patch. Ordering
// is checked on the merged record by the kind's Check.
func CheckDatePatch(p dash.Patch) error {
	for _, key := range []string{"start_date", "end_date", "date"} {
		v, ok := p[key].(string)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := metrics.ParseDate(v); err != nil {
			return dateError(key)
		}
	}
	return nil
}

// Span converts an experience for the years-of-experience calculation.
func (e Experience) Span() metrics.Span {
	return metrics.Span{Start: e.StartDate, End: e.EndDate, Current: e.Current}
}

func startOf(s string) time.Time {
	t, err := metrics.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ExperienceView() listview.Config[dash.Record[Experience]] {
	return listview.Config[dash.Record[Experience]]{
		Text: []func(dash.Record[Experience]) string{
			func(r dash.Record[Experience]) string { return r.Data.Title },
			func(r dash.Record[Experience]) string { return r.Data.Company },
			func(r dash.Record[Experience]) string { return r.Data.Description },
		},
		Category: func(r dash.Record[Experience]) string { return r.Data.EmploymentType },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Experience]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Experience]) time.Time { return startOf(r.Data.StartDate) }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Experience]) string { return r.Data.Company }),
		},
		DefaultSort: listview.SortRecent,
	}
}

func EducationView() listview.Config[dash.Record[Education]] {
	return listview.Config[dash.Record[Education]]{
		Text: []func(dash.Record[Education]) string{
			func(r dash.Record[Education]) string { return r.Data.Institution },
			func(r dash.Record[Education]) string { return r.Data.Degree },
			func(r dash.Record[Education]) string { return r.Data.Field },
		},
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Education]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Education]) time.Time { return startOf(r.Data.StartDate) }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Education]) string { return r.Data.Institution }),
		},
		DefaultSort: listview.SortRecent,
	}
}

func SkillView() listview.Config[dash.Record[Skill]] {
	return listview.Config[dash.Record[Skill]]{
		Text:     []func(dash.Record[Skill]) string{func(r dash.Record[Skill]) string { return r.Data.Name }},
		Category: func(r dash.Record[Skill]) string { return r.Data.Category },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Skill]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Skill]) time.Time { return r.UpdatedAt }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Skill]) string { return r.Data.Name }),
			listview.SortSize:   listview.ByNumberDesc(func(r dash.Record[Skill]) int { return r.Data.Proficiency }),
		},
		DefaultSort: listview.SortSize,
	}
}

func ProjectView() listview.Config[dash.Record[Project]] {
	return listview.Config[dash.Record[Project]]{
		Text: []func(dash.Record[Project]) string{
			func(r dash.Record[Project]) string { return r.Data.Name },
			func(r dash.Record[Project]) string { return r.Data.Description },
			func(r dash.Record[Project]) string { return strings.Join(r.Data.Technologies, " ") },
		},
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Project]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Project]) time.Time { return r.UpdatedAt }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Project]) string { return r.Data.Name }),
		},
		DefaultSort: listview.SortRecent,
	}
}

func AchievementView() listview.Config[dash.Record[Achievement]] {
	return listview.Config[dash.Record[Achievement]]{
		Text: []func(dash.Record[Achievement]) string{
			func(r dash.Record[Achievement]) string { return r.Data.Title },
			func(r dash.Record[Achievement]) string { return r.Data.Issuer },
		},
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Achievement]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Achievement]) time.Time { return startOf(r.Data.Date) }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Achievement]) string { return r.Data.Title }),
		},
		DefaultSort: listview.SortRecent,
	}
}

func ProfileView() listview.Config[dash.Record[Profile]] {
	return listview.Config[dash.Record[Profile]]{
		Text: []func(dash.Record[Profile]) string{
			func(r dash.Record[Profile]) string { return r.Data.FullName },
			func(r dash.Record[Profile]) string { return r.Data.Headline },
		},
	}
}
