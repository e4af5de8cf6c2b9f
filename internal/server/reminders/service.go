// Package reminders implements owner-scoped recurring reminders and the
// background dispatcher that delivers them.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, title string, frequencyMinutes int) (*Reminder, error) {

	principalID, ok := reqctx.PrincipalID(ctx)
	if !ok {
		return nil, common.ErrInvalidToken
	}
	if frequencyMinutes <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive", common.ErrInvalidArgument)
	}

	reminder := &Reminder{
		UserID:           principalID,
		Title:            title,
		FrequencyMinutes: frequencyMinutes,
		// first run one interval from now
		NextRunAt: time.Now().Add(time.Duration(frequencyMinutes) * time.Minute),
	}

	reminder, err := s.repo.Create(ctx, reminder)
	if err != nil {
		return nil, fmt.Errorf("error creating reminder: %w", err)
	}

	return reminder, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*Reminder, error) {

	if _, ok := reqctx.PrincipalID(ctx); !ok {
		return nil, common.ErrInvalidToken
	}

	result, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing reminders: %w", err)
	}

	return result, nil
}
