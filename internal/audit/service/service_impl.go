package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/harborline/shopd/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo auditdomain.Repository
	node *snowflake.Node
}

type ServiceParam struct {
	fx.In

	Log  *zap.Logger
	Repo auditdomain.Repository
	Node *snowflake.Node
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		log:  p.Log.Named("audit.service"),
		repo: p.Repo,
		node: p.Node,
	}
}

// Record writes the entry in the background; the audit trail must not
// slow down or fail the mutation it describes.
func (s *Service) Record(_ context.Context, entry auditdomain.Entry) {
	entry.ID = s.node.Generate()
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Insert(ctx, &entry); err != nil {
			s.log.Warn("audit write failed",
				zap.String("action", entry.Action), zap.Error(err))
		}
	}()
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.Entry, error) {
	return s.repo.List(ctx, filter)
}
