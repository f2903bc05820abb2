package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	dashhttp "github.com/freelancehub/dashboard-backend/internal/dashboard/http"
	"github.com/freelancehub/dashboard-backend/internal/logging"
)

// Subscriber streams an actor's mutation notifications.
type Subscriber interface {
	Subscribe(ctx context.Context, actorID string) (<-chan domain.Notification, error)
}

type NotificationsHandler struct {
	sub       Subscriber
	keepAlive time.Duration
}

// NewNotificationsHandler accepts a nil subscriber; the stream then answers 503.
func NewNotificationsHandler(sub Subscriber, keepAlive time.Duration) *NotificationsHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &NotificationsHandler{sub: sub, keepAlive: keepAlive}
}

func (h *NotificationsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications/stream", h.Stream)
}

// Stream relays notifications as server-sent events. A "ready" event is sent
// once the subscription is live; "ping" events keep idle proxies open.
func (h *NotificationsHandler) Stream(c *gin.Context) {
	actor := auth.ActorID(c)
	if actor == "" {
		dashhttp.HandleError(c, domain.ErrActorMissing, nil)
		return
	}
	if h.sub == nil {
		dashhttp.Abort(c, http.StatusServiceUnavailable, "notifications_disabled", "notification stream requires redis")
		return
	}

	ctx := c.Request.Context()
	events, err := h.sub.Subscribe(ctx, actor)
	if err != nil {
		logging.FromContext(ctx, nil).Error("notification subscribe failed", zap.Error(err))
		dashhttp.Abort(c, http.StatusBadGateway, "subscribe_failed", "could not open the notification stream")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"actor_id": actor})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
