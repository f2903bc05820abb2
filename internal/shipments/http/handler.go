package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/shipments/domain"
)

type Handler struct {
	resource *dashhttp.Resource[domain.Shipment]
	now      func() time.Time
}

func NewCollection(deps dashboard.Deps) *dashboard.Collection[domain.Shipment] {
	return dashboard.NewCollection(deps, crud.Options[domain.Shipment]{
		Kind:     domain.Kind,
		Label:    "Shipment",
		Describe: func(s domain.Shipment) string { return s.TrackingNumber },
		Check:    domain.Check,
	})
}

func New(col *dashboard.Collection[domain.Shipment], now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{resource: col.Resource(domain.View(), domain.Present), now: now}
}

// Register attaches shipment routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("/overview", h.overview)
	h.resource.Register(rg, mutate...)
}

func (h *Handler) overview(c *gin.Context) {
	all, _, err := h.resource.View(c)
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, domain.Summarize(all, h.now()))
}
