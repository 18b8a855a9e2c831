package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/harborline/shopd/internal/audit/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.Entry{}))
	return db
}

func insertEntry(t *testing.T, repo auditdomain.Repository, id int64, action, targetType string, at time.Time) {
	t.Helper()
	entry := &auditdomain.Entry{
		ID:         snowflake.ID(id),
		ActorType:  string(auditdomain.ActorTypeUser),
		Action:     action,
		TargetType: targetType,
		Metadata:   map[string]any{},
		CreatedAt:  at,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
}

func TestAuditListNewestFirst(t *testing.T) {
	repo := New(setupAuditTestDB(t))
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	insertEntry(t, repo, 1, "resource.create", "resource", base)
	insertEntry(t, repo, 2, "resource.delete", "resource", base.Add(time.Minute))

	entries, err := repo.List(context.Background(), auditdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "resource.delete", entries[0].Action)
}

func TestAuditListFilters(t *testing.T) {
	repo := New(setupAuditTestDB(t))
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	insertEntry(t, repo, 1, "resource.create", "resource", base)
	insertEntry(t, repo, 2, "resource.delete", "resource", base.Add(time.Minute))
	insertEntry(t, repo, 3, "apikey.create", "apikey", base.Add(2*time.Minute))

	entries, err := repo.List(context.Background(), auditdomain.ListFilter{Action: "resource.delete"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(context.Background(), auditdomain.ListFilter{TargetType: "resource"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	start := base.Add(30 * time.Second)
	end := base.Add(90 * time.Second)
	entries, err = repo.List(context.Background(), auditdomain.ListFilter{StartAt: &start, EndAt: &end})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "resource.delete", entries[0].Action)
}

func TestAuditListClampsLimit(t *testing.T) {
	repo := New(setupAuditTestDB(t))
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 60; i++ {
		insertEntry(t, repo, i, "resource.patch", "resource", base.Add(time.Duration(i)*time.Second))
	}

	entries, err := repo.List(context.Background(), auditdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 50)

	entries, err = repo.List(context.Background(), auditdomain.ListFilter{Limit: 500})
	require.NoError(t, err)
	require.Len(t, entries, 50)

	entries, err = repo.List(context.Background(), auditdomain.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 10)
}
