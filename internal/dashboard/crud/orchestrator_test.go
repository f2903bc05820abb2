package crud

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrchestrator(t *testing.T) (*Orchestrator[note], *countingRepo, *notify.Recorder, *fakeCache) {
	t.Helper()
	repo := newCountingRepo()
	rec := notify.NewRecorder()
	cache := &fakeCache{}
	o := New[note](repo, Options[note]{
		Kind:     "notes",
		Label:    "Note",
		Describe: func(n note) string { return n.Title },
		Notifier: rec,
		Cache:    cache,
		Now:      func() time.Time { return fixedNow },
	})
	return o, repo, rec, cache
}

func TestOrchestrator_CreateFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("missing required field makes no store call", func(t *testing.T) {
		o, repo, rec, _ := setupOrchestrator(t)

		res, err := o.Create(ctx, "alice", note{Category: "work"})
		require.Error(t, err)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
		assert.Equal(t, "is required", verr.Message)
		assert.True(t, domain.IsValidation(err))

		assert.Zero(t, repo.storeCalls())
		assert.Zero(t, repo.fetches.Load())
		require.NotNil(t, res)
		assert.Equal(t, domain.SeverityError, res.Notification.Severity)
		assert.Nil(t, res.Items)
		assert.Len(t, rec.For("alice"), 1)
	})

	t.Run("valid create mutates once notifies once refetches once", func(t *testing.T) {
		o, repo, rec, cache := setupOrchestrator(t)

		res, err := o.Create(ctx, "alice", note{Title: "Invoice ACME", Category: "work", Priority: 2})
		require.NoError(t, err)

		assert.EqualValues(t, 1, repo.inserts.Load())
		assert.EqualValues(t, 1, repo.fetches.Load())
		assert.Equal(t, 1, cache.invalidated)
		assert.Equal(t, 1, cache.sets)

		notes := rec.For("alice")
		require.Len(t, notes, 1)
		assert.Equal(t, domain.SeveritySuccess, notes[0].Severity)
		assert.Equal(t, "Note created", notes[0].Title)
		assert.Contains(t, notes[0].Description, "Invoice ACME")
		assert.Equal(t, "notes", notes[0].Kind)
		assert.Equal(t, fixedNow, notes[0].At)

		require.Len(t, res.Items, 1)
		assert.Equal(t, res.ID, res.Items[0].ID)
		assert.Equal(t, "Invoice ACME", res.Items[0].Data.Title)
	})

	t.Run("records are scoped to the actor", func(t *testing.T) {
		o, _, _, _ := setupOrchestrator(t)

		_, err := o.Create(ctx, "alice", note{Title: "mine"})
		require.NoError(t, err)

		items, err := o.Fetch(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("missing actor", func(t *testing.T) {
		o, repo, _, _ := setupOrchestrator(t)
		_, err := o.Create(ctx, "", note{Title: "x"})
		assert.ErrorIs(t, err, domain.ErrActorMissing)
		assert.Zero(t, repo.storeCalls())
	})
}

func TestOrchestrator_Update(t *testing.T) {
	ctx := context.Background()
	o, repo, _, _ := setupOrchestrator(t)

	created, err := o.Create(ctx, "alice", note{Title: "Draft", Priority: 1})
	require.NoError(t, err)
	id := created.ID

	t.Run("applies patch and returns refetched view", func(t *testing.T) {
		res, err := o.Update(ctx, "alice", id, domain.Patch{"priority": 4, "due": "2024-07-01"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, 4, res.Items[0].Data.Priority)
		assert.Equal(t, strPtr("2024-07-01"), res.Items[0].Data.Due)
		assert.Equal(t, "Draft", res.Items[0].Data.Title)
	})

	invalid := []struct {
		name  string
		patch domain.Patch
		field string
	}{
		{"empty patch", domain.Patch{}, ""},
		{"unknown key", domain.Patch{"colour": "red"}, "colour"},
		{"wrong type", domain.Patch{"title": 5}, "title"},
		{"cleared required field", domain.Patch{"title": ""}, "title"},
		{"null required field", domain.Patch{"title": nil}, "title"},
		{"out of range", domain.Patch{"priority": 9}, "priority"},
		{"bad enum", domain.Patch{"category": "garden"}, "category"},
		{"bad date", domain.Patch{"due": "2024-13-01"}, "due"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			before := repo.updates.Load()
			_, err := o.Update(ctx, "alice", id, tc.patch)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, before, repo.updates.Load())
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		res, err := o.Update(ctx, "alice", "missing", domain.Patch{"priority": 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.SeverityError, res.Notification.Severity)
	})

	t.Run("other actor cannot update", func(t *testing.T) {
		_, err := o.Update(ctx, "bob", id, domain.Patch{"priority": 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrchestrator_SoftDelete(t *testing.T) {
	ctx := context.Background()
	o, repo, _, _ := setupOrchestrator(t)

	keep, err := o.Create(ctx, "alice", note{Title: "keep"})
	require.NoError(t, err)
	gone, err := o.Create(ctx, "alice", note{Title: "gone"})
	require.NoError(t, err)

	res, err := o.Delete(ctx, "alice", gone.ID)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, keep.ID, res.Items[0].ID)
	assert.True(t, repo.Retained(gone.ID), "soft delete keeps the row")

	t.Run("deleted records never come back", func(t *testing.T) {
		items, err := o.Fetch(ctx, "alice")
		require.NoError(t, err)
		for _, it := range items {
			assert.NotEqual(t, gone.ID, it.ID)
		}
	})

	t.Run("second delete is not found", func(t *testing.T) {
		_, err := o.Delete(ctx, "alice", gone.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update of deleted record is not found", func(t *testing.T) {
		_, err := o.Update(ctx, "alice", gone.ID, domain.Patch{"title": "back"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrchestrator_StoreFailure(t *testing.T) {
	ctx := context.Background()
	o, repo, rec, cache := setupOrchestrator(t)
	repo.insertHook = func(context.Context) (string, error) {
		return "", errors.New("quota exceeded")
	}

	res, err := o.Create(ctx, "alice", note{Title: "x"})
	require.Error(t, err)

	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create", serr.Op)

	require.NotNil(t, res)
	assert.Nil(t, res.Items)
	assert.Equal(t, domain.SeverityError, res.Notification.Severity)
	assert.Equal(t, "quota exceeded", res.Notification.Description)
	assert.Equal(t, "Could not create note", res.Notification.Title)

	assert.Zero(t, repo.fetches.Load(), "no refetch after a failed mutation")
	assert.Zero(t, cache.invalidated)
	assert.Len(t, rec.For("alice"), 1)
}

func TestOrchestrator_CoalescesDuplicateMutations(t *testing.T) {
	ctx := context.Background()
	o, repo, _, _ := setupOrchestrator(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.insertHook = func(context.Context) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return repo.MemoryRepository.Insert(ctx, "alice", note{Title: "double"})
	}

	var wg sync.WaitGroup
	results := make([]*Result[note], 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := o.Create(ctx, "alice", note{Title: "double"})
			assert.NoError(t, err)
			results[i] = res
		}()
		if i == 0 {
			<-started
		}
	}
	// let the second click join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, repo.inserts.Load())
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, results[0].ID, results[1].ID)

	items, err := o.Fetch(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOrchestrator_Apply(t *testing.T) {
	ctx := context.Background()
	o, _, _, _ := setupOrchestrator(t)

	res, err := o.Apply(ctx, "alice", domain.MutationRequest[note]{Op: domain.OpCreate, Data: note{Title: "via apply"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	_, err = o.Apply(ctx, "alice", domain.MutationRequest[note]{Op: "archive", ID: res.ID})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "op", verr.Field)

	_, err = o.Apply(ctx, "alice", domain.MutationRequest[note]{Op: domain.OpDelete})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestOrchestrator_CheckHooks(t *testing.T) {
	repo := newCountingRepo()
	o := New[note](repo, Options[note]{
		Kind: "notes",
		Check: func(n note) error {
			if n.Category == "home" && n.Priority > 3 {
				return &domain.ValidationError{Field: "priority", Message: "home notes cap at 3"}
			}
			return nil
		},
	})

	_, err := o.Create(context.Background(), "alice", note{Title: "x", Category: "home", Priority: 5})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "home notes cap at 3", verr.Message)
	assert.Zero(t, repo.storeCalls())
}

func TestOrchestrator_UpdateChecksMergedRecord(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	o := New[note](repo, Options[note]{
		Kind: "notes",
		Check: func(n note) error {
			if n.Category == "home" && n.Priority > 3 {
				return &domain.ValidationError{Field: "priority", Message: "home notes cap at 3"}
			}
			return nil
		},
	})

	created, err := o.Create(ctx, "alice", note{Title: "x", Category: "work", Priority: 5})
	require.NoError(t, err)

	res, err := o.Update(ctx, "alice", created.ID, domain.Patch{"category": "home"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priority", verr.Field)
	assert.Equal(t, "Please fix the highlighted field", res.Notification.Title)
	assert.Zero(t, repo.updates.Load(), "rejected before the store write")

	_, err = o.Update(ctx, "alice", created.ID, domain.Patch{"category": "home", "priority": 3})
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.updates.Load())

	_, err = o.Update(ctx, "alice", "missing", domain.Patch{"priority": 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrchestrator_CoalescedFollowerOutlivesLeader(t *testing.T) {
	o, repo, _, _ := setupOrchestrator(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.insertHook = func(ctx context.Context) (string, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return repo.MemoryRepository.Insert(context.Background(), "alice", note{Title: "shared"})
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := o.Create(leaderCtx, "alice", note{Title: "shared"})
		leaderErr <- err
	}()
	<-started

	type outcome struct {
		res *Result[note]
		err error
	}
	follower := make(chan outcome, 1)
	go func() {
		res, err := o.Create(context.Background(), "alice", note{Title: "shared"})
		follower <- outcome{res, err}
	}()
	require.Eventually(t, func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		for _, f := range o.flights {
			if f.waiters == 2 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	got := <-follower
	require.NoError(t, got.err)
	require.Len(t, got.res.Items, 1)
	assert.EqualValues(t, 1, repo.inserts.Load())
}
