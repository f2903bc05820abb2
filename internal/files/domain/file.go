package domain

import (
	"time"

	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

const Kind = "files"

// CloudFile is a stored object as the storage browser shows it.
type CloudFile struct {
	Name       string     `json:"name" yaml:"name" validate:"required,max=255"`
	Path       string     `json:"path" yaml:"path" validate:"required"`
	Type       string     `json:"type" yaml:"type" validate:"required,oneof=document image video audio archive other"`
	SizeBytes  int64      `json:"size_bytes" yaml:"size_bytes" validate:"min=0"`
	Starred    bool       `json:"starred" yaml:"starred"`
	StorageKey string     `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
	AccessedAt *time.Time `json:"accessed_at,omitempty" yaml:"accessed_at,omitempty"`
}

func Modified(r dash.Record[CloudFile]) time.Time {
	if r.Data.ModifiedAt != nil {
		return *r.Data.ModifiedAt
	}
	return r.UpdatedAt
}

func View() listview.Config[dash.Record[CloudFile]] {
	return listview.Config[dash.Record[CloudFile]]{
		Text: []func(dash.Record[CloudFile]) string{
			func(r dash.Record[CloudFile]) string { return r.Data.Name },
			func(r dash.Record[CloudFile]) string { return r.Data.Path },
		},
		Category: func(r dash.Record[CloudFile]) string { return r.Data.Type },
		Sorts: map[listview.SortKey]listview.Compare[dash.Record[CloudFile]]{
			listview.SortRecent: listview.ByTimeDesc(Modified),
			listview.SortName:   listview.ByTextAsc(func(r dash.Record[CloudFile]) string { return r.Data.Name }),
			listview.SortSize:   listview.ByNumberDesc(func(r dash.Record[CloudFile]) int64 { return r.Data.SizeBytes }),
		},
		DefaultSort: listview.SortRecent,
	}
}

type Item struct {
	dash.Record[CloudFile]
	Size     string `json:"size"`
	Modified string `json:"modified"`
}

func Present(now func() time.Time) func(dash.Record[CloudFile]) any {
	return func(r dash.Record[CloudFile]) any {
		return Item{
			Record:   r,
			Size:     format.Bytes(r.Data.SizeBytes),
			Modified: format.Relative(Modified(r), now()),
		}
	}
}

type Stats struct {
	Files          int            `json:"files"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	TotalSize      string         `json:"total_size"`
	ByType         map[string]int `json:"by_type"`
	Starred        int            `json:"starred"`
}

func ComputeStats(all []dash.Record[CloudFile]) Stats {
	total := metrics.Sum(all, func(r dash.Record[CloudFile]) int64 { return r.Data.SizeBytes })
	starred := 0
	for _, r := range all {
		if r.Data.Starred {
			starred++
		}
	}
	return Stats{
		Files:          len(all),
		TotalSizeBytes: total,
		TotalSize:      format.Bytes(total),
		ByType:         metrics.CountBy(all, func(r dash.Record[CloudFile]) string { return r.Data.Type }),
		Starred:        starred,
	}
}
