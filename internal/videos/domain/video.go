package domain

import (
	"time"

	"github.com/dustin/go-humanize"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

const Kind = "videos"

const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

// Video holds the sharing settings of one uploaded video.
type Video struct {
	Title           string `json:"title" yaml:"title" validate:"required,max=200"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty" validate:"max=5000"`
	Visibility      string `json:"visibility" yaml:"visibility" validate:"required,oneof=public unlisted private"`
	AllowDownloads  bool   `json:"allow_downloads" yaml:"allow_downloads"`
	AllowComments   bool   `json:"allow_comments" yaml:"allow_comments"`
	DurationSeconds int    `json:"duration_seconds" yaml:"duration_seconds" validate:"min=0"`
	Views           int64  `json:"views" yaml:"views" validate:"min=0"`
}

func View() listview.Config[dash.Record[Video]] {
	return listview.Config[dash.Record[Video]]{
		Text: []func(dash.Record[Video]) string{
			func(r dash.Record[Video]) string { return r.Data.Title },
			func(r dash.Record[Video]) string { return r.Data.Description },
		},
		Category: func(r dash.Record[Video]) string { return r.Data.Visibility },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[Video]]{
			listview.SortRecent: listview.ByTimeDesc(func(r dash.Record[Video]) time.Time { return r.UpdatedAt }),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[Video]) string { return r.Data.Title }),
			listview.SortSize:   listview.ByNumberDesc(func(r dash.Record[Video]) int64 { return r.Data.Views }),
		},
		DefaultSort: listview.SortRecent,
	}
}

type Item struct {
	dash.Record[Video]
	Duration string `json:"duration"`
	Views    string `json:"views_display"`
}

func Present(r dash.Record[Video]) any {
	return Item{
		Record:   r,
		Duration: format.Duration(r.Data.DurationSeconds),
		Views:    humanize.Comma(r.Data.Views),
	}
}

// Sharing counts videos per visibility and per enabled permission.
type Sharing struct {
	Total          int            `json:"total"`
	ByVisibility   map[string]int `json:"by_visibility"`
	Downloadable   int            `json:"downloadable"`
	Commentable    int            `json:"commentable"`
	TotalViews     string         `json:"total_views"`
	TotalWatchTime string         `json:"total_watch_time"`
}

func Summarize(all []dash.Record[Video]) Sharing {
	s := Sharing{
		Total:        len(all),
		ByVisibility: metrics.CountBy(all, func(r dash.Record[Video]) string { return r.Data.Visibility }),
	}
	for _, r := range all {
		if r.Data.AllowDownloads {
			s.Downloadable++
		}
		if r.Data.AllowComments {
			s.Commentable++
		}
	}
	s.TotalViews = humanize.Comma(metrics.Sum(all, func(r dash.Record[Video]) int64 { return r.Data.Views }))
	s.TotalWatchTime = format.Duration(int(metrics.Sum(all, func(r dash.Record[Video]) int64 { return int64(r.Data.DurationSeconds) })))
	return s
}
