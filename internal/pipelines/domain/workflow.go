package domain

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
)

const Kind = "pipelines"

const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusRunning   = "running"
	StatusQueued    = "queued"
	StatusCancelled = "cancelled"

	TriggerPush        = "push"
	TriggerPullRequest = "pull_request"
	TriggerSchedule    = "schedule"
	TriggerManual      = "manual"
)

// Workflow is one CI/CD pipeline definition and its latest run.
type Workflow struct {
	Name            string     `json:"name" yaml:"name" validate:"required,max=120"`
	Repository      string     `json:"repository" yaml:"repository" validate:"required"`
	Branch          string     `json:"branch" yaml:"branch" validate:"required"`
	Status          string     `json:"status" yaml:"status" validate:"required,oneof=success failed running queued cancelled"`
	Trigger         string     `json:"trigger" yaml:"trigger" validate:"required,oneof=push pull_request schedule manual"`
	Schedule        string     `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty" yaml:"last_run_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds" yaml:"duration_seconds" validate:"min=0"`
}

// ParseSchedule accepts standard five-field cron expressions and descriptors
// such as @daily.
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(strings.TrimSpace(spec))
}

// Check requires a valid schedule on scheduled workflows.
func Check(w Workflow) error {
	if w.Trigger == TriggerSchedule && strings.TrimSpace(w.Schedule) == "" {
		return &dash.ValidationError{Field: "schedule", Message: "is required for scheduled workflows"}
	}
	if w.Schedule != "" {
		if _, err := ParseSchedule(w.Schedule); err != nil {
			return &dash.ValidationError{Field: "schedule", Message: "is not a valid cron expression"}
		}
	}
	return nil
}

func CheckPatch(p dash.Patch) error {
	if spec, ok := p["schedule"].(string); ok && spec != "" {
		if _, err := ParseSchedule(spec); err != nil {
			return &dash.ValidationError{Field: "schedule", Message: "is not a valid cron expression"}
		}
	}
	return nil
}

// LastActivity is the last run, or creation for workflows that never ran.
func LastActivity(r dash.Record[Workflow]) time.Time {
	if r.Data.LastRunAt != nil {
		return *r.Data.LastRunAt
	}
	return r.CreatedAt
}

func View() listview.Config[dash.Record[Workflow]] {
	return listview.Config[dash.Record[Workflow]]{
		Text: []func(dash.Record[Workflow]) string{
			func(r dash.Record[Workflow]) string { return r.Data.Name },
			func(r dash.Record[Workflow]) string { return r.Data.Repository },
			func(r dash.Record[Workflow]) string { return r.Data.Branch },
		},
		Category: func(r dash.Record[Workflow]) string { return r.Data.Status },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Workflow]]{
			listview.SortRecent: listview.ByTimeDesc(LastActivity),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Workflow]) string { return r.Data.Name }),
			listview.SortSize:   listview.ByNumberDesc(func(r dash.Record[Workflow]) int { return r.Data.DurationSeconds }),
		},
		DefaultSort: listview.SortRecent,
	}
}

// Item is a workflow as the hub lists it.
type Item struct {
	dash.Record[Workflow]
	Duration string `json:"duration"`
	LastRun  string `json:"last_run,omitempty"`
}

func Present(now func() time.Time) func(dash.Record[Workflow]) any {
	return func(r dash.Record[Workflow]) any {
		it := Item{Record: r, Duration: format.Duration(r.Data.DurationSeconds)}
		if r.Data.LastRunAt != nil {
			it.LastRun = format.Relative(*r.Data.LastRunAt, now())
		}
		return it
	}
}

// Summary is the hub header.
type Summary struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	Scheduled   int            `json:"scheduled"`
	SuccessRate int            `json:"success_rate"`
	AvgDuration string         `json:"avg_duration"`
}
