// Package http exposes any dashboard collection over gin: list with
// filter and sort, cached snapshot, create, update, delete, bulk delete and
// export.
package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/cache"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/export"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/metrics"
)

// Snapshots reads the actor's cached collection.
type Snapshots[T any] interface {
	Get(ctx context.Context, actorID string) (*cache.Snapshot[T], error)
}

type Options[T any] struct {
	View listview.Config[domain.Record[T]]
	// Cache backs GET /cached. Optional.
	Cache Snapshots[T]
	// Present maps a record to its list item. Defaults to the record itself.
	Present func(domain.Record[T]) any
	Now     func() time.Time
}

type Resource[T any] struct {
	orch *crud.Orchestrator[T]
	opts Options[T]
}

func NewResource[T any](orch *crud.Orchestrator[T], opts Options[T]) *Resource[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Present == nil {
		opts.Present = func(r domain.Record[T]) any { return r }
	}
	return &Resource[T]{orch: orch, opts: opts}
}

// Register attaches the collection routes. mutate wraps the writing routes,
// typically with a rate limiter.
func (h *Resource[T]) Register(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/cached", h.Cached)
	rg.GET("/export", h.Export)
	rg.POST("", chain(mutate, h.Create)...)
	rg.PATCH("/:id", chain(mutate, h.Update)...)
	rg.DELETE("/:id", chain(mutate, h.Delete)...)
	rg.POST("/bulk-delete", chain(mutate, h.BulkDelete)...)
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(slices.Clip(mw), h)
}

type ListResponse struct {
	Items   []any              `json:"items"`
	Total   int                `json:"total"`
	Visible int                `json:"visible"`
	Counts  map[string]int     `json:"counts,omitempty"`
	Sorts   []listview.SortKey `json:"sorts"`
}

type MutationResponse struct {
	ID           string              `json:"id,omitempty"`
	Notification domain.Notification `json:"notification"`
	Items        []any               `json:"items"`
	RefetchError string              `json:"refetch_error,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteResponse struct {
	Succeeded    int                 `json:"succeeded"`
	Failed       int                 `json:"failed"`
	Errors       map[string]string   `json:"errors,omitempty"`
	Notification domain.Notification `json:"notification"`
	Items        []any               `json:"items"`
	RefetchError string              `json:"refetch_error,omitempty"`
}

// View fetches the actor's records and applies the query-string criteria.
// It returns the full collection and the visible subset.
func (h *Resource[T]) View(c *gin.Context) (all, visible []domain.Record[T], err error) {
	var cr listview.Criteria
	if err := c.ShouldBindQuery(&cr); err != nil {
		return nil, nil, &domain.ValidationError{Field: "query", Message: err.Error()}
	}
	all, err = h.orch.Fetch(c.Request.Context(), auth.ActorID(c))
	if err != nil {
		return nil, nil, err
	}
	visible, err = listview.Apply(all, h.opts.View, cr)
	if err != nil {
		return nil, nil, err
	}
	return all, visible, nil
}

func (h *Resource[T]) List(c *gin.Context) {
	all, visible, err := h.View(c)
	if err != nil {
		HandleError(c, err, nil)
		return
	}

	resp := ListResponse{
		Items:   h.present(visible),
		Total:   len(all),
		Visible: len(visible),
		Sorts:   h.opts.View.SortKeys(),
	}
	if h.opts.View.Category != nil {
		resp.Counts = metrics.CountBy(all, h.opts.View.Category)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Resource[T]) Cached(c *gin.Context) {
	if h.opts.Cache == nil {
		HandleError(c, domain.ErrNotFound, nil)
		return
	}
	snap, err := h.opts.Cache.Get(c.Request.Context(), auth.ActorID(c))
	if errors.Is(err, cache.ErrMiss) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored_at": snap.StoredAt, "items": h.present(snap.Items)})
}

func (h *Resource[T]) Create(c *gin.Context) {
	var data T
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	res, err := h.orch.Create(c.Request.Context(), auth.ActorID(c), data)
	h.Respond(c, http.StatusCreated, res, err)
}

func (h *Resource[T]) Update(c *gin.Context) {
	var patch domain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	res, err := h.orch.Update(c.Request.Context(), auth.ActorID(c), c.Param("id"), patch)
	h.Respond(c, http.StatusOK, res, err)
}

func (h *Resource[T]) Delete(c *gin.Context) {
	res, err := h.orch.Delete(c.Request.Context(), auth.ActorID(c), c.Param("id"))
	h.Respond(c, http.StatusOK, res, err)
}

func (h *Resource[T]) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	res, err := h.orch.BulkDelete(c.Request.Context(), auth.ActorID(c), req.IDs)
	if err != nil {
		var n *domain.Notification
		if res != nil {
			n = &res.Notification
		}
		HandleError(c, err, n)
		return
	}

	status := http.StatusOK
	if res.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, BulkDeleteResponse{
		Succeeded:    res.Succeeded,
		Failed:       res.Failed,
		Errors:       res.Errors,
		Notification: res.Notification,
		Items:        h.present(res.Items),
		RefetchError: res.RefetchError,
	})
}

// Export downloads the filtered view. ?format=yaml switches from JSON.
func (h *Resource[T]) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err, nil)
		return
	}
	_, visible, err := h.View(c)
	if err != nil {
		HandleError(c, err, nil)
		return
	}

	now := h.opts.Now()
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(h.orch.Kind(), format, now)+`"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, export.NewDocument(h.orch.Kind(), visible, now)); err != nil {
		_ = c.Error(err)
	}
}

// Respond writes a mutation outcome: the refetched view on success, a
// problem carrying the notification on failure.
func (h *Resource[T]) Respond(c *gin.Context, status int, res *crud.Result[T], err error) {
	if err != nil {
		var n *domain.Notification
		if res != nil {
			n = &res.Notification
		}
		HandleError(c, err, n)
		return
	}
	c.JSON(status, MutationResponse{
		ID:           res.ID,
		Notification: res.Notification,
		Items:        h.present(res.Items),
		RefetchError: res.RefetchError,
	})
}

func (h *Resource[T]) present(items []domain.Record[T]) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, h.opts.Present(it))
	}
	return out
}
