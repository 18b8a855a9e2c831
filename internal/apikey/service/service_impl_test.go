package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	"go.uber.org/zap"
)

type fakeKeyRepo struct {
	keys        []apikeydomain.APIKey
	deactivated []snowflake.ID
}

func (f *fakeKeyRepo) Insert(_ context.Context, key *apikeydomain.APIKey) error {
	f.keys = append(f.keys, *key)
	return nil
}

func (f *fakeKeyRepo) FindByValue(_ context.Context, value string) (*apikeydomain.APIKey, error) {
	for i := range f.keys {
		if f.keys[i].Key == value {
			return &f.keys[i], nil
		}
	}
	return nil, nil
}

func (f *fakeKeyRepo) ListByOwner(_ context.Context, ownerID snowflake.ID) ([]apikeydomain.APIKey, error) {
	var out []apikeydomain.APIKey
	for _, key := range f.keys {
		if key.OwnerID == ownerID {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeKeyRepo) Touch(_ context.Context, _ snowflake.ID) error { return nil }

func (f *fakeKeyRepo) Deactivate(_ context.Context, id snowflake.ID) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func newTestService(t *testing.T, repo *fakeKeyRepo) apikeydomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewService(ServiceParam{Log: zap.NewNop(), Repo: repo, GenID: node})
}

func TestCreateIssuesOpaqueKey(t *testing.T) {
	repo := &fakeKeyRepo{}
	svc := newTestService(t, repo)

	key, err := svc.Create(context.Background(), snowflake.ID(42), map[string]any{"label": "ci"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(key.Key, "sk_") {
		t.Fatalf("unexpected key format: %q", key.Key)
	}
	if !key.IsActive || key.OwnerID != snowflake.ID(42) {
		t.Fatalf("unexpected key state: %+v", key)
	}
	if len(repo.keys) != 1 {
		t.Fatalf("expected one stored key, got %d", len(repo.keys))
	}
	if repo.keys[0].Metadata["label"] != "ci" {
		t.Fatalf("metadata not stored: %+v", repo.keys[0].Metadata)
	}
}

func TestInfoMissingKey(t *testing.T) {
	svc := newTestService(t, &fakeKeyRepo{})
	if _, err := svc.Info(context.Background(), "sk_ghost"); !errors.Is(err, apikeydomain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListReturnsOwnKeysOnly(t *testing.T) {
	repo := &fakeKeyRepo{keys: []apikeydomain.APIKey{
		{ID: 1, Key: "sk_a", OwnerID: 10},
		{ID: 2, Key: "sk_b", OwnerID: 20},
		{ID: 3, Key: "sk_c", OwnerID: 10},
	}}
	svc := newTestService(t, repo)

	keys, err := svc.List(context.Background(), snowflake.ID(10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	for _, key := range keys {
		if key.OwnerID != snowflake.ID(10) {
			t.Fatalf("foreign key listed: %+v", key)
		}
	}
}

func TestRevokeEnforcesOwnership(t *testing.T) {
	repo := &fakeKeyRepo{keys: []apikeydomain.APIKey{
		{ID: 1, Key: "sk_a", OwnerID: 10},
		{ID: 2, Key: "sk_b", OwnerID: 20},
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	if err := svc.Revoke(ctx, snowflake.ID(10), snowflake.ID(2)); !errors.Is(err, apikeydomain.ErrNotFound) {
		t.Fatalf("expected not found for a foreign key, got %v", err)
	}
	if err := svc.Revoke(ctx, snowflake.ID(10), snowflake.ID(99)); !errors.Is(err, apikeydomain.ErrNotFound) {
		t.Fatalf("expected not found for an unknown key, got %v", err)
	}
	if len(repo.deactivated) != 0 {
		t.Fatalf("nothing should have been deactivated yet: %v", repo.deactivated)
	}

	if err := svc.Revoke(ctx, snowflake.ID(10), snowflake.ID(1)); err != nil {
		t.Fatalf("revoke own key: %v", err)
	}
	if len(repo.deactivated) != 1 || repo.deactivated[0] != snowflake.ID(1) {
		t.Fatalf("unexpected deactivations: %v", repo.deactivated)
	}
}
