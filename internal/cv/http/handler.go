package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/cv/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
)

// Collections groups the six portfolio sections.
type Collections struct {
	Profile      *dashboard.Collection[domain.Profile]
	Experiences  *dashboard.Collection[domain.Experience]
	Educations   *dashboard.Collection[domain.Education]
	Skills       *dashboard.Collection[domain.Skill]
	Projects     *dashboard.Collection[domain.Project]
	Achievements *dashboard.Collection[domain.Achievement]
}

func NewCollections(deps dashboard.Deps) Collections {
	return Collections{
		Profile: dashboard.NewCollection(deps, crud.Options[domain.Profile]{
			Kind:     domain.KindProfile,
			Label:    "Profile",
			Describe: func(p domain.Profile) string { return p.FullName },
		}),
		Experiences: dashboard.NewCollection(deps, crud.Options[domain.Experience]{
			Kind:       domain.KindExperiences,
			Label:      "Experience",
			Describe:   func(e domain.Experience) string { return e.Title + " at " + e.Company },
			Check:      domain.CheckExperience,
			CheckPatch: domain.CheckDatePatch,
		}),
		Educations: dashboard.NewCollection(deps, crud.Options[domain.Education]{
			Kind:       domain.KindEducations,
			Label:      "Education",
			Describe:   func(e domain.Education) string { return e.Degree },
			Check:      domain.CheckEducation,
			CheckPatch: domain.CheckDatePatch,
		}),
		Skills: dashboard.NewCollection(deps, crud.Options[domain.Skill]{
			Kind:     domain.KindSkills,
			Label:    "Skill",
			Describe: func(s domain.Skill) string { return s.Name },
		}),
		Projects: dashboard.NewCollection(deps, crud.Options[domain.Project]{
			Kind:     domain.KindProjects,
			Label:    "Project",
			Describe: func(p domain.Project) string { return p.Name },
		}),
		Achievements: dashboard.NewCollection(deps, crud.Options[domain.Achievement]{
			Kind:       domain.KindAchievements,
			Label:      "Achievement",
			Describe:   func(a domain.Achievement) string { return a.Title },
			Check:      domain.CheckAchievement,
			CheckPatch: domain.CheckDatePatch,
		}),
	}
}

type Handler struct {
	cols Collections
	now  func() time.Time
}

func New(cols Collections, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{cols: cols, now: now}
}

// Register mounts one sub-resource per section plus the summary.
func (h *Handler) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("/summary", h.summary)
	h.cols.Profile.Resource(domain.ProfileView(), nil).Register(rg.Group("/profile"), mutate...)
	h.cols.Experiences.Resource(domain.ExperienceView(), nil).Register(rg.Group("/experiences"), mutate...)
	h.cols.Educations.Resource(domain.EducationView(), nil).Register(rg.Group("/educations"), mutate...)
	h.cols.Skills.Resource(domain.SkillView(), nil).Register(rg.Group("/skills"), mutate...)
	h.cols.Projects.Resource(domain.ProjectView(), nil).Register(rg.Group("/projects"), mutate...)
	h.cols.Achievements.Resource(domain.AchievementView(), nil).Register(rg.Group("/achievements"), mutate...)
}

// Portfolio fetches every section concurrently.
func (h *Handler) Portfolio(c *gin.Context) (domain.Portfolio, error) {
	var p domain.Portfolio
	actor := auth.ActorID(c)
	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() (err error) { p.Profiles, err = h.cols.Profile.Orch.Fetch(ctx, actor); return })
	g.Go(func() (err error) { p.Experiences, err = h.cols.Experiences.Orch.Fetch(ctx, actor); return })
	g.Go(func() (err error) { p.Educations, err = h.cols.Educations.Orch.Fetch(ctx, actor); return })
	g.Go(func() (err error) { p.Skills, err = h.cols.Skills.Orch.Fetch(ctx, actor); return })
	g.Go(func() (err error) { p.Projects, err = h.cols.Projects.Orch.Fetch(ctx, actor); return })
	g.Go(func() (err error) { p.Achievements, err = h.cols.Achievements.Orch.Fetch(ctx, actor); return })

	if err := g.Wait(); err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

func (h *Handler) summary(c *gin.Context) {
	p, err := h.Portfolio(c)
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	s, err := domain.Summarize(p, h.now())
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, s)
}
