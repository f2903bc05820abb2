package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/logging"
)

// ProblemExt carries the failing field and the user-facing notification in
// the problem's extensions member.
type ProblemExt struct {
	Field        string               `json:"field,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// Problem is the RFC 7807 body written for every failed request.
type Problem = problems.ExtendedProblem[ProblemExt]

func newProblem(c *gin.Context, status int, typ, detail string) *problems.Problem {
	return problems.NewStatusProblem(status).
		WithInstance(c.Request.URL.Path).
		WithType(typ).
		WithDetail(detail)
}

func writeProblem(c *gin.Context, p *Problem) {
	c.Header("Content-Type", problems.ProblemMediaType)
	c.AbortWithStatusJSON(p.Status, p)
}

// Abort writes a bare problem response.
func Abort(c *gin.Context, status int, typ, detail string) {
	writeProblem(c, problems.Extend(newProblem(c, status, typ, detail), ProblemExt{}))
}

func badRequest(c *gin.Context, typ, detail string) {
	Abort(c, http.StatusBadRequest, typ, detail)
}

// HandleError maps err to a problem response. n is the notification the
// orchestrator produced for the failure, if any.
func HandleError(c *gin.Context, err error, n *domain.Notification) {
	var (
		status int
		typ    string
		detail = err.Error()
		field  string
	)

	var verr *domain.ValidationError
	var serr *domain.StoreError
	switch {
	case errors.As(err, &verr):
		status, typ, field, detail = http.StatusBadRequest, "validation_error", verr.Field, verr.Error()
	case errors.Is(err, domain.ErrUnknownSort):
		status, typ = http.StatusBadRequest, "unknown_sort"
	case errors.Is(err, domain.ErrInvalidDate):
		status, typ = http.StatusUnprocessableEntity, "invalid_date"
	case errors.Is(err, domain.ErrActorMissing):
		status, typ = http.StatusUnauthorized, "unauthorized"
	case domain.IsNotFound(err):
		status, typ, detail = http.StatusNotFound, "not_found", "record not found"
	case errors.Is(err, domain.ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, typ = http.StatusRequestTimeout, "canceled"
	case errors.As(err, &serr):
		status, typ = http.StatusBadGateway, "store_error"
	default:
		status, typ, detail = http.StatusInternalServerError, "internal_error", "internal error"
		logging.FromContext(c.Request.Context(), nil).Error("unhandled error",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	ext := ProblemExt{Field: field}
	if n != nil && n.Title != "" {
		ext.Notification = n
	}
	writeProblem(c, problems.Extend(newProblem(c, status, typ, detail), ext))
}
