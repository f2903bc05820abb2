package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/crud"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/listview"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
)

type bookmark struct {
	URL string `json:"url" validate:"required,url"`
}

func TestNewCollection_MemoryStoreWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rec := notify.NewRecorder()
	col := NewCollection(Deps{Redis: client, Notifier: rec, CacheTTL: time.Minute}, crud.Options[bookmark]{
		Kind:  "bookmarks",
		Label: "Bookmark",
	})

	_, isMemory := col.Repo.(*crud.MemoryRepository[bookmark])
	assert.True(t, isMemory)
	_, ok := col.Scanner()
	assert.True(t, ok)

	res, err := col.Orch.Create(context.Background(), "alice", bookmark{URL: "https://go.dev"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	assert.True(t, mr.Exists("dash:list:bookmarks:alice"))
	assert.Len(t, rec.For("alice"), 1)
}

func TestNewCollection_NoRedis(t *testing.T) {
	col := NewCollection(Deps{}, crud.Options[bookmark]{Kind: "bookmarks"})
	assert.Nil(t, col.cache)
	assert.NotNil(t, col.Resource(listview.Config[domain.Record[bookmark]]{}, nil))
}
