package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/videos/domain"
)

type Handler struct {
	resource *dashhttp.Resource[domain.Video]
}

func NewCollection(deps dashboard.Deps) *dashboard.Collection[domain.Video] {
	return dashboard.NewCollection(deps, crud.Options[domain.Video]{
		Kind:     domain.Kind,
		Label:    "Video",
		Describe: func(v domain.Video) string { return v.Title },
	})
}

func New(col *dashboard.Collection[domain.Video]) *Handler {
	return &Handler{resource: col.Resource(domain.View(), domain.Present)}
}

func (h *Handler) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("/sharing", h.sharing)
	h.resource.Register(rg, mutate...)
}

func (h *Handler) sharing(c *gin.Context) {
	all, _, err := h.resource.View(c)
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, domain.Summarize(all))
}
