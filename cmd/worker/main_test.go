package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/freelancehub/dashboard-backend/config"
)

var stamp = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &app{
		cfg:    &config.Config{Database: config.DatabaseConfig{Backend: config.StoreBackendPostgres}},
		logger: zap.NewNop(),
		openDB: func(context.Context) (*sql.DB, error) { return db, nil },
	}, mock
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "data", "created_at", "updated_at"}).
		AddRow("r1", "alice", []byte(`{"title":"Demo reel","visibility":"public"}`), stamp, stamp).
		AddRow("r2", "bob", []byte(`{"visibility":"private"}`), stamp, stamp)
}

func TestList(t *testing.T) {
	a, mock := newTestApp(t)
	mock.ExpectQuery(`SELECT (.+) FROM dashboard_records WHERE kind = \$1 AND deleted_at IS NULL`).
		WithArgs("videos").
		WillReturnRows(recordRows())
	mock.ExpectClose()

	out, err := run(t, a, "list", "videos")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo reel")
	assert.Contains(t, out, "2024-06-01 10:30")
	assert.Contains(t, out, "2 record(s)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnknownKind(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := run(t, a, "list", "invoices")
	assert.ErrorContains(t, err, `unknown kind "invoices"`)
}

func TestExport_YAMLFile(t *testing.T) {
	a, mock := newTestApp(t)
	mock.ExpectQuery(`SELECT (.+) FROM dashboard_records WHERE owner_id = \$1 AND kind = \$2`).
		WithArgs("alice", "videos").
		WillReturnRows(recordRows())
	mock.ExpectClose()

	path := filepath.Join(t.TempDir(), "videos.yaml")
	_, err := run(t, a, "export", "videos", "--owner", "alice", "--format", "yaml", "-o", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Kind  string `yaml:"kind"`
		Count int    `yaml:"count"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "videos", doc.Kind)
	assert.Equal(t, 2, doc.Count)
}

func TestExport_RequiresOwner(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := run(t, a, "export", "videos")
	assert.ErrorContains(t, err, "--owner")

	_, err = run(t, a, "export", "videos", "--owner", "alice", "--format", "csv")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestInit_MemoryBackend(t *testing.T) {
	a := &app{
		cfg:    &config.Config{Database: config.DatabaseConfig{Backend: config.StoreBackendMemory}},
		logger: zap.NewNop(),
	}
	assert.Error(t, a.init())
}
