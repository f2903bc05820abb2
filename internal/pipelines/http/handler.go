package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/format"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
	"github.com/freelancehub/dashboard-backend/internal/pipelines/domain"
)

type Handler struct {
	col      *dashboard.Collection[domain.Workflow]
	resource *dashhttp.Resource[domain.Workflow]
	now      func() time.Time
}

// NewCollection wires the workflow collection.
func NewCollection(deps dashboard.Deps) *dashboard.Collection[domain.Workflow] {
	return dashboard.NewCollection(deps, crud.Options[domain.Workflow]{
		Kind:       domain.Kind,
		Label:      "Workflow",
		Describe:   func(w domain.Workflow) string { return w.Name },
		Check:      domain.Check,
		CheckPatch: domain.CheckPatch,
	})
}

func New(col *dashboard.Collection[domain.Workflow], now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		col:      col,
		resource: col.Resource(domain.View(), domain.Present(now)),
		now:      now,
	}
}

// Register attaches pipeline routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("/summary", h.summary)
	rg.POST("/:id/trigger", append(slices.Clip(mutate), h.trigger)...)
	h.resource.Register(rg, mutate...)
}

// trigger queues a manual run.
func (h *Handler) trigger(c *gin.Context) {
	res, err := h.col.Orch.Update(c.Request.Context(), auth.ActorID(c), c.Param("id"), dash.Patch{
		"status":      domain.StatusQueued,
		"last_run_at": h.now().UTC(),
	})
	h.resource.Respond(c, http.StatusAccepted, res, err)
}

func (h *Handler) summary(c *gin.Context) {
	all, _, err := h.resource.View(c)
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, Summarize(all))
}

// Summarize computes the hub header from the full collection.
func Summarize(all []dash.Record[domain.Workflow]) domain.Summary {
	s := domain.Summary{
		Total:    len(all),
		ByStatus: metrics.CountBy(all, func(r dash.Record[domain.Workflow]) string { return r.Data.Status }),
	}
	finished := 0
	for _, r := range all {
		if r.Data.Trigger == domain.TriggerSchedule {
			s.Scheduled++
		}
		if r.Data.Status == domain.StatusSuccess || r.Data.Status == domain.StatusFailed {
			finished++
		}
	}
	if finished > 0 {
		s.SuccessRate = s.ByStatus[domain.StatusSuccess] * 100 / finished
	}
	avg := 0
	if len(all) > 0 {
		total := metrics.Sum(all, func(r dash.Record[domain.Workflow]) int64 { return int64(r.Data.DurationSeconds) })
		avg = int(total / int64(len(all)))
	}
	s.AvgDuration = format.Duration(avg)
	return s
}
