// Package listview produces the filtered, ordered view a dashboard renders
// from an in-memory collection. Each dashboard configures which fields take
// part in text search, which field is the category, and which keys sort.
package listview

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// SortKey names a configured ordering.
type SortKey string

const (
	SortRecent SortKey = "recent"
	SortName   SortKey = "name"
	SortSize   SortKey = "size"
)

// Criteria is the ephemeral search state of one dashboard view.
type Criteria struct {
	Query    string  `form:"q"`
	Category string  `form:"category"`
	Sort     SortKey `form:"sort"`
}

// Compare orders two items; negative means a sorts first.
type Compare[T any] func(a, b T) int

// Config describes how one dashboard's records are searched and ordered.
type Config[T any] struct {
	Text     []func(T) string
	Category func(T) string
	Sorts    map[SortKey]Compare[T]
	// DefaultSort is used when Criteria.Sort is empty. Empty keeps input order.
	DefaultSort SortKey
}

// SortKeys lists the configured keys in a stable order.
func (c Config[T]) SortKeys() []SortKey {
	keys := make([]SortKey, 0, len(c.Sorts))
	for k := range c.Sorts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Validate checks the criteria against the config without touching any data.
func (c Config[T]) Validate(cr Criteria) error {
	key := cr.Sort
	if key == "" {
		key = c.DefaultSort
	}
	if key == "" {
		return nil
	}
	if _, ok := c.Sorts[key]; !ok {
		return fmt.Errorf("%w %q", domain.ErrUnknownSort, key)
	}
	return nil
}

// Apply filters items by text AND category, then stable-sorts them. The input
// slice is never modified, so repeated calls over the same snapshot agree.
func Apply[T any](items []T, cfg Config[T], cr Criteria) ([]T, error) {
	if err := cfg.Validate(cr); err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(cr.Query))
	category := strings.TrimSpace(cr.Category)

	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchesText(it, cfg.Text, query) && matchesCategory(it, cfg.Category, category) {
			out = append(out, it)
		}
	}

	key := cr.Sort
	if key == "" {
		key = cfg.DefaultSort
	}
	if key != "" {
		slices.SortStableFunc(out, cfg.Sorts[key])
	}
	return out, nil
}

func matchesText[T any](it T, fields []func(T) string, query string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), query) {
			return true
		}
	}
	return false
}

func matchesCategory[T any](it T, field func(T) string, category string) bool {
	if category == "" || category == AllCategories || field == nil {
		return true
	}
	return field(it) == category
}

// ByTimeDesc orders most recent first. Zero times sort last.
func ByTimeDesc[T any](field func(T) time.Time) Compare[T] {
	return func(a, b T) int {
		ta, tb := field(a), field(b)
		switch {
		case ta.Equal(tb):
			return 0
		case ta.IsZero():
			return 1
		case tb.IsZero():
			return -1
		}
		return tb.Compare(ta)
	}
}

// ByTextAsc orders lexicographically, ignoring case.
func ByTextAsc[T any](field func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// ByNumberDesc orders largest first.
func ByNumberDesc[T any, N cmp.Ordered](field func(T) N) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(field(b), field(a))
	}
}
