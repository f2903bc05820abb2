package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	dash "github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/pipelines/domain"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	col := NewCollection(dashboard.Deps{Now: func() time.Time { return now }})
	h := New(col, func() time.Time { return now })

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxFirebaseUID, "alice"); c.Next() })
	h.Register(r.Group("/pipelines"))
	return r
}

func send(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func TestPipelines_TriggerAndSummary(t *testing.T) {
	r := newRouter(t)

	rr := send(t, r, http.MethodPost, "/pipelines", domain.Workflow{
		Name: "deploy", Repository: "acme/web", Branch: "main",
		Status: domain.StatusSuccess, Trigger: domain.TriggerPush, DurationSeconds: 120,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = send(t, r, http.MethodPost, "/pipelines", domain.Workflow{
		Name: "nightly", Repository: "acme/web", Branch: "main",
		Status: domain.StatusFailed, Trigger: domain.TriggerSchedule, Schedule: "0 3 * * *", DurationSeconds: 60,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = send(t, r, http.MethodPost, "/pipelines", domain.Workflow{
		Name: "bad", Repository: "acme/web", Branch: "main",
		Status: domain.StatusQueued, Trigger: domain.TriggerSchedule, Schedule: "whenever",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = send(t, r, http.MethodGet, "/pipelines/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sum domain.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Scheduled)
	assert.Equal(t, 50, sum.SuccessRate)
	assert.Equal(t, "1m 30s", sum.AvgDuration)

	rr = send(t, r, http.MethodPost, "/pipelines/"+created.ID+"/trigger", nil)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"status":"queued"`)
	assert.Contains(t, rr.Body.String(), `"last_run":"just now"`)

	rr = send(t, r, http.MethodPost, "/pipelines/missing/trigger", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize([]dash.Record[domain.Workflow]{})
	assert.Zero(t, s.Total)
	assert.Zero(t, s.SuccessRate)
	assert.Equal(t, "0s", s.AvgDuration)
}
