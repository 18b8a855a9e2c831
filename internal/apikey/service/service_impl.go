package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const keyBytes = 32

// Service issues opaque API keys.
type Service struct {
	log   *zap.Logger
	repo  apikeydomain.Repository
	genID *snowflake.Node
}

// ServiceParam collects the service dependencies.
type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Repo  apikeydomain.Repository
	GenID *snowflake.Node
}

// NewService constructs the key service.
func NewService(p ServiceParam) apikeydomain.Service {
	return &Service{
		log:   p.Log.Named("apikey.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, metadata map[string]any) (*apikeydomain.APIKey, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	key := &apikeydomain.APIKey{
		ID:       s.genID.Generate(),
		Key:      secret,
		OwnerID:  ownerID,
		IsActive: true,
	}
	if metadata != nil {
		key.Metadata = datatypes.JSONMap(metadata)
	}
	if err := s.repo.Insert(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *Service) Info(ctx context.Context, value string) (*apikeydomain.APIKey, error) {
	key, err := s.repo.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, apikeydomain.ErrNotFound
	}
	return key, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID) ([]apikeydomain.APIKey, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Revoke(ctx context.Context, ownerID, id snowflake.ID) error {
	keys, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if key.ID == id {
			return s.repo.Deactivate(ctx, id)
		}
	}
	return apikeydomain.ErrNotFound
}

func generateSecret() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "sk_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
