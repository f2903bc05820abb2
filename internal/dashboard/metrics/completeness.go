// Package metrics derives summary numbers from a snapshot of dashboard records.
// Nothing here is stored: callers recompute from the current collection.
package metrics

import "strings"

// Profile holds the scalar CV fields the completeness checklist inspects.
type Profile struct {
	FullName string
	Headline string
	Summary  string
	Email    string
	Phone    string
	Location string
}

// Snapshot is the CV state a completeness score is computed from.
type Snapshot struct {
	Profile      Profile
	Experiences  int
	Educations   int
	Skills       int
	Projects     int
	Achievements int
}

// MaxCompleteness is the cap applied to the weighted sum.
const MaxCompleteness = 100

// Check is one entry of the completeness checklist.
type Check struct {
	Name   string
	Points int
	Passes func(Snapshot) bool
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

// Checklist is the fixed weight table. The weights add up to 105: the
// three-skill check overlaps the five-skill check, and the sum is clamped.
var Checklist = []Check{
	{"full_name", 10, func(s Snapshot) bool { return present(s.Profile.FullName) }},
	{"headline", 10, func(s Snapshot) bool { return present(s.Profile.Headline) }},
	{"summary", 10, func(s Snapshot) bool { return present(s.Profile.Summary) }},
	{"email", 5, func(s Snapshot) bool { return present(s.Profile.Email) }},
	{"phone", 5, func(s Snapshot) bool { return present(s.Profile.Phone) }},
	{"location", 5, func(s Snapshot) bool { return present(s.Profile.Location) }},
	{"experience", 15, func(s Snapshot) bool { return s.Experiences >= 1 }},
	{"experience_2", 5, func(s Snapshot) bool { return s.Experiences >= 2 }},
	{"education", 10, func(s Snapshot) bool { return s.Educations >= 1 }},
	{"skills_5", 10, func(s Snapshot) bool { return s.Skills >= 5 }},
	{"projects", 10, func(s Snapshot) bool { return s.Projects >= 1 }},
	{"achievements", 5, func(s Snapshot) bool { return s.Achievements >= 1 }},
	{"skills_3", 5, func(s Snapshot) bool { return s.Skills >= 3 }},
}

// Completeness sums the points of every passing check, clamped to MaxCompleteness.
func Completeness(s Snapshot) int {
	total := 0
	for _, c := range Checklist {
		if c.Passes(s) {
			total += c.Points
		}
	}
	if total > MaxCompleteness {
		return MaxCompleteness
	}
	return total
}

// Missing lists the checks that did not pass, in checklist order.
func Missing(s Snapshot) []string {
	var out []string
	for _, c := range Checklist {
		if !c.Passes(s) {
			out = append(out, c.Name)
		}
	}
	return out
}
