package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullSnapshot() Snapshot {
	return Snapshot{
		Profile: Profile{
			FullName: "Ada Lovelace",
			Headline: "Analyst",
			Summary:  "Writes programs for engines that do not exist yet.",
			Email:    "ada@example.com",
			Phone:    "+44 20 0000 0000",
			Location: "London",
		},
		Experiences:  2,
		Educations:   1,
		Skills:       5,
		Projects:     1,
		Achievements: 1,
	}
}

func TestCompleteness_Empty(t *testing.T) {
	assert.Equal(t, 0, Completeness(Snapshot{}))
	assert.Len(t, Missing(Snapshot{}), len(Checklist))
}

func TestCompleteness_WeightsTotal(t *testing.T) {
	total := 0
	for _, c := range Checklist {
		total += c.Points
	}
	assert.Equal(t, 105, total)
}

func TestCompleteness_ClampedNotNormalised(t *testing.T) {
	s := fullSnapshot()
	assert.Equal(t, 100, Completeness(s))
	assert.Empty(t, Missing(s))

	s.Skills = 50
	s.Experiences = 12
	assert.Equal(t, 100, Completeness(s))
}

func TestCompleteness_PartialProfile(t *testing.T) {
	s := Snapshot{
		Profile: Profile{FullName: "Ada", Email: "ada@example.com"},
		Skills:  3,
	}
	// name 10 + email 5 + skills_3 5
	assert.Equal(t, 20, Completeness(s))

	s.Profile.Headline = "   "
	assert.Equal(t, 20, Completeness(s), "blank strings do not count as present")
}

func TestCompleteness_Monotonic(t *testing.T) {
	s := Snapshot{Profile: Profile{FullName: "Ada"}}
	prev := Completeness(s)

	steps := []func(*Snapshot){
		func(s *Snapshot) { s.Skills++ },
		func(s *Snapshot) { s.Experiences++ },
		func(s *Snapshot) { s.Educations++ },
		func(s *Snapshot) { s.Projects++ },
		func(s *Snapshot) { s.Achievements++ },
	}
	for round := 0; round < 8; round++ {
		for _, step := range steps {
			step(&s)
			got := Completeness(s)
			assert.GreaterOrEqual(t, got, prev)
			assert.LessOrEqual(t, got, MaxCompleteness)
			prev = got
		}
	}
}

func TestCompleteness_SixthSkillNeverDecreases(t *testing.T) {
	s := fullSnapshot()
	s.Skills = 5
	before := Completeness(s)
	s.Skills = 6
	assert.GreaterOrEqual(t, Completeness(s), before)
}
