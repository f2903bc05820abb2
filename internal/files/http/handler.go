package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/files/domain"
	"github.com/freelancehub/dashboard-backend/internal/files/storage"
	"github.com/freelancehub/dashboard-backend/internal/logging"
)

type Handler struct {
	col       *dashboard.Collection[domain.CloudFile]
	resource  *dashhttp.Resource[domain.CloudFile]
	presigner storage.Presigner
}

func NewCollection(deps dashboard.Deps) *dashboard.Collection[domain.CloudFile] {
	return dashboard.NewCollection(deps, crud.Options[domain.CloudFile]{
		Kind:     domain.Kind,
		Label:    "File",
		Describe: func(f domain.CloudFile) string { return f.Name },
	})
}

// New accepts a nil presigner; downloads then answer 503.
func New(col *dashboard.Collection[domain.CloudFile], presigner storage.Presigner, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		col:       col,
		resource:  col.Resource(domain.View(), domain.Present(now)),
		presigner: presigner,
	}
}

// Register attaches file routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("/stats", h.stats)
	rg.GET("/:id/download", h.download)
	h.resource.Register(rg, mutate...)
}

func (h *Handler) stats(c *gin.Context) {
	all, _, err := h.resource.View(c)
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, domain.ComputeStats(all))
}

func (h *Handler) download(c *gin.Context) {
	if h.presigner == nil {
		dashhttp.Abort(c, http.StatusServiceUnavailable, "storage_disabled", "file storage is not configured")
		return
	}

	all, err := h.col.Orch.Fetch(c.Request.Context(), auth.ActorID(c))
	if err != nil {
		dashhttp.HandleError(c, err, nil)
		return
	}
	id := c.Param("id")
	var file *dash.Record[domain.CloudFile]
	for i := range all {
		if all[i].ID == id {
			file = &all[i]
			break
		}
	}
	if file == nil {
		dashhttp.HandleError(c, dash.ErrNotFound, nil)
		return
	}
	if file.Data.StorageKey == "" {
		dashhttp.HandleError(c, &dash.ValidationError{Field: "storage_key", Message: "file has no stored object"}, nil)
		return
	}

	link, err := h.presigner.PresignGet(c.Request.Context(), file.Data.StorageKey, file.Data.Name)
	if err != nil {
		logging.FromContext(c.Request.Context(), nil).Error("presign failed", zap.String("file_id", id), zap.Error(err))
		dashhttp.Abort(c, http.StatusBadGateway, "storage_error", "could not create a download link")
		return
	}
	c.JSON(http.StatusOK, link)
}
