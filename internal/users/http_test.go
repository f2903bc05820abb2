package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/freelancehub/dashboard-backend/internal/auth"
)

type stubProfiles map[string]*User

func (s stubProfiles) ByFirebaseUID(_ context.Context, uid string) (*User, error) {
	if u, ok := s[uid]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func serveMe(t *testing.T, h *Handler, actor string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxFirebaseUID, actor) })
	h.Register(r.Group(""))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	return rr
}

func TestHandler_Me(t *testing.T) {
	profiles := stubProfiles{"alice": {ID: "1", FirebaseUID: "alice", Email: "alice@example.com"}}

	rr := serveMe(t, NewHandler(profiles), "alice")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alice@example.com")

	rr = serveMe(t, NewHandler(profiles), "bob")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serveMe(t, NewHandler(nil), "carol")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"firebase_uid":"carol"`)
}
