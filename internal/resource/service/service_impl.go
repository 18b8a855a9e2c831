package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/harborline/shopd/internal/cache"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	"github.com/harborline/shopd/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const listCacheTTL = 5 * time.Minute

// listCacheEntity names the cached resources listing in cache keys.
const listCacheEntity = "resourcesList"

// Service implements the inventory use cases over the repository with a
// memoized listing path.
type Service struct {
	log   *zap.Logger
	repo  resourcedomain.Repository
	cache *cache.Service
}

// ServiceParam collects the service dependencies.
type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Repo  resourcedomain.Repository
	Cache *cache.Service
}

// NewService constructs the inventory service.
func NewService(p ServiceParam) resourcedomain.Service {
	return &Service{
		log:   p.Log.Named("resource.service"),
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req resourcedomain.CreateRequest) (*resourcedomain.Resource, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	res := &resourcedomain.Resource{
		Name:        strings.TrimSpace(req.Name),
		Type:        strings.TrimSpace(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
		Price:       req.Price,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (*resourcedomain.Resource, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, resourcedomain.ErrNotFound
	}
	return res, nil
}

// List serves the paginated inventory, memoized for listCacheTTL unless
// the caller asks for the latest state.
func (s *Service) List(ctx context.Context, req resourcedomain.ListRequest) (resourcedomain.ListResponse, error) {
	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()

	if req.Latest {
		return s.listFromStore(ctx, req.Search, page)
	}

	key := cache.BuildKey(listCacheEntity, map[string]string{
		"search": strings.TrimSpace(req.Search),
		"page":   strconv.Itoa(page.Page),
		"limit":  strconv.Itoa(page.Limit),
	})

	var cached resourcedomain.ListResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	resp, err := s.listFromStore(ctx, req.Search, page)
	if err != nil {
		return resourcedomain.ListResponse{}, err
	}

	s.cache.Set(key, resp, listCacheTTL)
	return resp, nil
}

func (s *Service) listFromStore(ctx context.Context, search string, page pagination.Pagination) (resourcedomain.ListResponse, error) {
	items, err := s.repo.FindAll(ctx, search, page)
	if err != nil {
		return resourcedomain.ListResponse{}, err
	}
	return resourcedomain.ListResponse{
		Items: items,
		PageInfo: pagination.PageInfo{
			Page:  page.Page,
			Limit: page.Limit,
			Count: len(items),
		},
	}, nil
}

func (s *Service) Update(ctx context.Context, req resourcedomain.UpdateRequest) (*resourcedomain.Resource, error) {
	res, err := s.Get(ctx, strings.TrimSpace(req.ID))
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, resourcedomain.ErrInvalidName
		}
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		if strings.TrimSpace(*req.Type) == "" {
			return nil, resourcedomain.ErrInvalidType
		}
		res.Type = strings.TrimSpace(*req.Type)
	}
	if req.Description != nil {
		res.Description = req.Description
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, resourcedomain.ErrInvalidAmount
		}
		res.Amount = *req.Amount
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, resourcedomain.ErrInvalidPrice
		}
		res.Price = *req.Price
	}

	if err := s.repo.Save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*resourcedomain.Resource, error) {
	res, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, resourcedomain.ErrNotFound
	}
	return res, nil
}

func validateCreate(req resourcedomain.CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return resourcedomain.ErrInvalidName
	}
	if strings.TrimSpace(req.Type) == "" {
		return resourcedomain.ErrInvalidType
	}
	if req.Amount < 0 {
		return resourcedomain.ErrInvalidAmount
	}
	if req.Price.IsNegative() {
		return resourcedomain.ErrInvalidPrice
	}
	return nil
}
