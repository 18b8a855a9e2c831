package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/harborline/shopd/internal/cache"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	"github.com/harborline/shopd/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeRepo struct {
	byID         map[string]*resourcedomain.Resource
	listing      []resourcedomain.Resource
	findAllCalls int
	saved        *resourcedomain.Resource
}

func (f *fakeRepo) Create(_ context.Context, res *resourcedomain.Resource) error {
	res.ID = "generated-id"
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*resourcedomain.Resource, error) {
	return f.byID[id], nil
}

func (f *fakeRepo) FindByIDs(_ context.Context, ids []string) ([]resourcedomain.Resource, error) {
	var out []resourcedomain.Resource
	for _, id := range ids {
		if res := f.byID[id]; res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindAll(_ context.Context, _ string, _ pagination.Pagination) ([]resourcedomain.Resource, error) {
	f.findAllCalls++
	return f.listing, nil
}

func (f *fakeRepo) Save(_ context.Context, res *resourcedomain.Resource) error {
	f.saved = res
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) (*resourcedomain.Resource, error) {
	res := f.byID[id]
	delete(f.byID, id)
	return res, nil
}

func newTestService(repo *fakeRepo) (resourcedomain.Service, *cache.Service) {
	store := cache.NewService(cache.NewMemoryStore(), zap.NewNop(), false)
	svc := NewService(ServiceParam{Log: zap.NewNop(), Repo: repo, Cache: store})
	return svc, store
}

// waitForCacheFill blocks until the listing for the given parameters
// lands in the cache. Writes happen off the request path.
func waitForCacheFill(t *testing.T, store *cache.Service, search string, page, limit int) {
	t.Helper()
	key := cache.BuildKey(listCacheEntity, map[string]string{
		"search": search,
		"page":   strconv.Itoa(page),
		"limit":  strconv.Itoa(limit),
	})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var cached resourcedomain.ListResponse
		if store.Get(context.Background(), key, &cached) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache never filled for key %s", key)
}

func sampleListing() []resourcedomain.Resource {
	return []resourcedomain.Resource{
		{ID: "a", Name: "Iron Sword", Type: "weapon", Amount: 3, Price: decimal.NewFromInt(10)},
		{ID: "b", Name: "Iron Shield", Type: "armor", Amount: 5, Price: decimal.NewFromInt(12)},
	}
}

func TestListMemoizesRepeatedQueries(t *testing.T) {
	repo := &fakeRepo{listing: sampleListing()}
	svc, store := newTestService(repo)
	ctx := context.Background()

	first, err := svc.List(ctx, resourcedomain.ListRequest{})
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if repo.findAllCalls != 1 {
		t.Fatalf("expected one store read, got %d", repo.findAllCalls)
	}
	if first.Count != 2 || first.Page != 1 || first.Limit != pagination.DefaultPageSize {
		t.Fatalf("unexpected page info: %+v", first.PageInfo)
	}

	waitForCacheFill(t, store, "", 1, pagination.DefaultPageSize)

	second, err := svc.List(ctx, resourcedomain.ListRequest{})
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if repo.findAllCalls != 1 {
		t.Fatalf("cached list still hit the store, %d reads", repo.findAllCalls)
	}
	if len(second.Items) != 2 || second.Items[0].Name != "Iron Sword" {
		t.Fatalf("unexpected cached items: %+v", second.Items)
	}
}

func TestListLatestBypassesCache(t *testing.T) {
	repo := &fakeRepo{listing: sampleListing()}
	svc, store := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.List(ctx, resourcedomain.ListRequest{}); err != nil {
		t.Fatalf("prime list: %v", err)
	}
	waitForCacheFill(t, store, "", 1, pagination.DefaultPageSize)

	repo.listing = append(repo.listing, resourcedomain.Resource{ID: "c", Name: "Oak Bow", Type: "weapon"})

	fresh, err := svc.List(ctx, resourcedomain.ListRequest{Latest: true})
	if err != nil {
		t.Fatalf("latest list: %v", err)
	}
	if repo.findAllCalls != 2 {
		t.Fatalf("latest did not reach the store, %d reads", repo.findAllCalls)
	}
	if fresh.Count != 3 {
		t.Fatalf("expected fresh count 3, got %d", fresh.Count)
	}

	// The memoized entry is untouched.
	cached, err := svc.List(ctx, resourcedomain.ListRequest{})
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if repo.findAllCalls != 2 || cached.Count != 2 {
		t.Fatalf("expected stale cached listing, reads=%d count=%d", repo.findAllCalls, cached.Count)
	}
}

func TestListDistinctParamsAreDistinctEntries(t *testing.T) {
	repo := &fakeRepo{listing: sampleListing()}
	svc, store := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.List(ctx, resourcedomain.ListRequest{Search: "iron"}); err != nil {
		t.Fatalf("list iron: %v", err)
	}
	waitForCacheFill(t, store, "iron", 1, pagination.DefaultPageSize)

	if _, err := svc.List(ctx, resourcedomain.ListRequest{Search: "oak"}); err != nil {
		t.Fatalf("list oak: %v", err)
	}
	if repo.findAllCalls != 2 {
		t.Fatalf("different search should miss, got %d reads", repo.findAllCalls)
	}
}

func TestCreateValidatesAndTrims(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	cases := []struct {
		name string
		req  resourcedomain.CreateRequest
		want error
	}{
		{"blank name", resourcedomain.CreateRequest{Name: "  ", Type: "weapon"}, resourcedomain.ErrInvalidName},
		{"blank type", resourcedomain.CreateRequest{Name: "Sword", Type: ""}, resourcedomain.ErrInvalidType},
		{"negative amount", resourcedomain.CreateRequest{Name: "Sword", Type: "weapon", Amount: -1}, resourcedomain.ErrInvalidAmount},
		{"negative price", resourcedomain.CreateRequest{Name: "Sword", Type: "weapon", Price: decimal.NewFromInt(-5)}, resourcedomain.ErrInvalidPrice},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	res, err := svc.Create(ctx, resourcedomain.CreateRequest{
		Name:   "  Iron Sword  ",
		Type:   " weapon ",
		Amount: 3,
		Price:  decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Name != "Iron Sword" || res.Type != "weapon" {
		t.Fatalf("fields not trimmed: %q %q", res.Name, res.Type)
	}
	if res.ID == "" {
		t.Fatal("expected the repository-assigned id")
	}
}

func TestUpdateMergesSetFieldsOnly(t *testing.T) {
	desc := "old"
	repo := &fakeRepo{byID: map[string]*resourcedomain.Resource{
		"a": {ID: "a", Name: "Iron Sword", Type: "weapon", Description: &desc, Amount: 3, Price: decimal.NewFromInt(10)},
	}}
	svc, _ := newTestService(repo)

	amount := int64(7)
	newDesc := "reforged"
	got, err := svc.Update(context.Background(), resourcedomain.UpdateRequest{
		ID:          "a",
		Amount:      &amount,
		Description: &newDesc,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount != 7 || *got.Description != "reforged" {
		t.Fatalf("set fields not applied: %+v", got)
	}
	if got.Name != "Iron Sword" || got.Type != "weapon" || !got.Price.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unset fields changed: %+v", got)
	}
	if repo.saved == nil || repo.saved.ID != "a" {
		t.Fatal("expected the merged record to be saved")
	}
}

func TestUpdateValidatesSetFields(t *testing.T) {
	repo := &fakeRepo{byID: map[string]*resourcedomain.Resource{
		"a": {ID: "a", Name: "Iron Sword", Type: "weapon"},
	}}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	blank := "   "
	if _, err := svc.Update(ctx, resourcedomain.UpdateRequest{ID: "a", Name: &blank}); !errors.Is(err, resourcedomain.ErrInvalidName) {
		t.Fatalf("expected invalid_name, got %v", err)
	}
	bad := int64(-1)
	if _, err := svc.Update(ctx, resourcedomain.UpdateRequest{ID: "a", Amount: &bad}); !errors.Is(err, resourcedomain.ErrInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("nothing should have been saved")
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	svc, _ := newTestService(&fakeRepo{byID: map[string]*resourcedomain.Resource{}})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, resourcedomain.ErrNotFound) {
		t.Fatalf("expected not found on get, got %v", err)
	}
	if _, err := svc.Delete(ctx, "ghost"); !errors.Is(err, resourcedomain.ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}
