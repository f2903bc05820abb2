package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancehub/dashboard-backend/internal/auth"
)

// Profiles is the read side the /me handler needs.
type Profiles interface {
	ByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
}

type Handler struct {
	profiles Profiles
}

// NewHandler accepts a nil Profiles when no user store is configured; /me
// then reports only the actor id.
func NewHandler(profiles Profiles) *Handler {
	return &Handler{profiles: profiles}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	actor := auth.ActorID(c)
	if h.profiles == nil {
		c.JSON(http.StatusOK, gin.H{"user": User{FirebaseUID: actor}})
		return
	}

	u, err := h.profiles.ByFirebaseUID(c.Request.Context(), actor)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
