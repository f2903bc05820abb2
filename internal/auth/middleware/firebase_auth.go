package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/logging"
	"github.com/freelancehub/dashboard-backend/internal/users"
)

const problemMediaType = "application/problem+json"

// UserEnsurer upserts the actor into the users table and returns its row id.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// FirebaseAuth validates Firebase ID tokens and stores the uid as the actor.
// ensurer may be nil.
func FirebaseAuth(verifier auth.TokenVerifier, ensurer UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c, "missing authorization token")
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.FromContext(c.Request.Context(), nil).Debug("token rejected", zap.Error(err))
			unauthorized(c, "invalid token")
			return
		}

		email, _ := decoded.Claims["email"].(string)
		name, _ := decoded.Claims["name"].(string)
		picture, _ := decoded.Claims["picture"].(string)
		if !setActor(c, ensurer, users.UpsertUser{
			FirebaseUID: decoded.UID,
			Email:       email,
			DisplayName: name,
			PhotoURL:    picture,
		}) {
			return
		}
		c.Next()
	}
}

// DevUser trusts the X-User-Id header and falls back to auth.DemoUser.
// Use this ONLY for development/testing.
func DevUser(ensurer UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = auth.DemoUser
		}
		if !setActor(c, ensurer, users.UpsertUser{
			FirebaseUID: uid,
			Email:       c.GetHeader("X-User-Email"),
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		}) {
			return
		}
		c.Next()
	}
}

func setActor(c *gin.Context, ensurer UserEnsurer, u users.UpsertUser) bool {
	if ensurer != nil {
		id, err := ensurer.EnsureUser(c.Request.Context(), u)
		if err != nil {
			logging.FromContext(c.Request.Context(), nil).Error("ensure user failed",
				zap.String("firebase_uid", u.FirebaseUID), zap.Error(err))
			problem := problems.NewStatusProblem(http.StatusInternalServerError).
				WithInstance(c.Request.URL.Path).
				WithType("user_sync_failed").
				WithDetail("could not load the current user")
			c.Header("Content-Type", problemMediaType)
			c.AbortWithStatusJSON(http.StatusInternalServerError, problem)
			return false
		}
		c.Set(auth.CtxUserDBID, id)
	}

	c.Set(auth.CtxFirebaseUID, u.FirebaseUID)
	if u.Email != "" {
		c.Set(auth.CtxEmail, u.Email)
	}
	ctx := logging.WithContext(c.Request.Context(),
		logging.FromContext(c.Request.Context(), nil).With(zap.String("actor_id", u.FirebaseUID)))
	c.Request = c.Request.WithContext(ctx)
	return true
}

func unauthorized(c *gin.Context, detail string) {
	problem := problems.NewStatusProblem(http.StatusUnauthorized).
		WithInstance(c.Request.URL.Path).
		WithType("unauthorized").
		WithDetail(detail)
	c.Header("Content-Type", problemMediaType)
	c.AbortWithStatusJSON(http.StatusUnauthorized, problem)
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
