package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupKeyTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&apikeydomain.APIKey{}); err != nil {
		t.Fatalf("migrate api_keys: %v", err)
	}
	return db
}

func newKeyRepo(t *testing.T) *Repository {
	t.Helper()
	return Provide(setupKeyTestDB(t)).(*Repository)
}

func insertKey(t *testing.T, repo *Repository, id int64, value string, owner int64) *apikeydomain.APIKey {
	t.Helper()
	key := &apikeydomain.APIKey{
		ID:       snowflake.ID(id),
		Key:      value,
		OwnerID:  snowflake.ID(owner),
		IsActive: true,
	}
	if err := repo.Insert(context.Background(), key); err != nil {
		t.Fatalf("insert key: %v", err)
	}
	return key
}

func TestAPIKeyFindByValue(t *testing.T) {
	repo := newKeyRepo(t)
	insertKey(t, repo, 1, "sk_live_one", 10)

	got, err := repo.FindByValue(context.Background(), "sk_live_one")
	if err != nil || got == nil {
		t.Fatalf("find by value: %v %v", got, err)
	}
	if got.OwnerID != 10 {
		t.Fatalf("unexpected owner %d", got.OwnerID)
	}

	missing, err := repo.FindByValue(context.Background(), "sk_live_other")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown value, got %v %v", missing, err)
	}
}

func TestAPIKeyListByOwner(t *testing.T) {
	repo := newKeyRepo(t)
	insertKey(t, repo, 1, "sk_live_one", 10)
	insertKey(t, repo, 2, "sk_live_two", 10)
	insertKey(t, repo, 3, "sk_live_three", 11)

	keys, err := repo.ListByOwner(context.Background(), 10)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestAPIKeyTouchSetsLastUsed(t *testing.T) {
	repo := newKeyRepo(t)
	key := insertKey(t, repo, 1, "sk_live_one", 10)

	if key.LastUsedAt != nil {
		t.Fatal("fresh key must not carry a last-used timestamp")
	}
	if err := repo.Touch(context.Background(), key.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := repo.FindByValue(context.Background(), "sk_live_one")
	if err != nil || got == nil {
		t.Fatalf("find by value: %v %v", got, err)
	}
	if got.LastUsedAt == nil {
		t.Fatal("expected last-used timestamp after touch")
	}
}

func TestAPIKeyDeactivate(t *testing.T) {
	repo := newKeyRepo(t)
	key := insertKey(t, repo, 1, "sk_live_one", 10)

	if err := repo.Deactivate(context.Background(), key.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := repo.FindByValue(context.Background(), "sk_live_one")
	if err != nil || got == nil {
		t.Fatalf("find by value: %v %v", got, err)
	}
	if got.IsActive {
		t.Fatal("expected key to be inactive")
	}
}
