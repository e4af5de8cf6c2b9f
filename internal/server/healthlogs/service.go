// Package healthlogs implements owner-scoped health log entries. The rows
// are isolated per principal by the storage-side policy; this layer only
// supplies the ambient owner on insert and never re-checks ownership.
package healthlogs

import (
	"context"
	"fmt"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, logType, value, notes string) (*Log, error) {

	principalID, ok := reqctx.PrincipalID(ctx)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	log := &Log{
		UserID:  principalID,
		LogType: logType,
		Value:   value,
		Notes:   notes,
	}

	log, err := s.repo.Create(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("error creating log: %w", err)
	}

	return log, nil
}

func (s *Service) List(ctx context.Context) ([]*Log, error) {

	if _, ok := reqctx.PrincipalID(ctx); !ok {
		return nil, common.ErrInvalidToken
	}

	logs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing logs: %w", err)
	}

	return logs, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {

	if _, ok := reqctx.PrincipalID(ctx); !ok {
		return common.ErrInvalidToken
	}

	return s.repo.Delete(ctx, id)
}
