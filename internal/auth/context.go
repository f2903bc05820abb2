package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserDBID    = "user_db_id"
	CtxEmail       = "email"
)

// DemoUser is the actor used in dev mode when no X-User-Id header is sent.
const DemoUser = "demo-user"

// ActorID returns the authenticated actor, or "" when the request has none.
// Dashboard records are owned by this id.
func ActorID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// UserDBID is the users.id row for the actor, when a user store is wired.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}
