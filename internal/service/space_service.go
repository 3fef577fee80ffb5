package service

import (
	"context"
	"strings"

	"turfdesk/internal/billing"
	"turfdesk/internal/domain"
	"turfdesk/internal/models"

	"github.com/rs/zerolog"
)

type SpaceService struct {
	data   domain.DataService
	logger *zerolog.Logger
}

func NewSpaceService(data domain.DataService, logger *zerolog.Logger) *SpaceService {
	return &SpaceService{data: data, logger: logger}
}

func (s *SpaceService) List(ctx context.Context) ([]models.Space, error) {
	return s.data.GetSpaces(ctx)
}

func (s *SpaceService) Get(ctx context.Context, id string) (*models.Space, error) {
	return findSpace(ctx, s.data, id)
}

func (s *SpaceService) Create(ctx context.Context, space *models.Space) (*models.Space, error) {
	normalizeSpace(space)
	if err := billing.ValidateSpace(space); err != nil {
		return nil, invalid(err)
	}
	created, err := s.data.CreateSpace(ctx, space)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("space_id", created.ID).Str("name", created.Name).Msg("Space created")
	return created, nil
}

func (s *SpaceService) Update(ctx context.Context, space *models.Space) (*models.Space, error) {
	if err := requireText("space id", space.ID); err != nil {
		return nil, err
	}
	normalizeSpace(space)
	if err := billing.ValidateSpace(space); err != nil {
		return nil, invalid(err)
	}
	updated, err := s.data.UpdateSpace(ctx, space)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("space_id", space.ID).Int("custom_rates", len(space.CustomRates)).Msg("Space updated")
	return updated, nil
}

func (s *SpaceService) Delete(ctx context.Context, id string) error {
	if err := requireText("space id", id); err != nil {
		return err
	}
	if err := s.data.DeleteSpace(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("space_id", id).Msg("Space deleted")
	return nil
}

func normalizeSpace(space *models.Space) {
	if space == nil {
		return
	}
	space.Name = strings.TrimSpace(space.Name)
	if len(space.CustomRates) == 0 {
		space.CustomRates = nil
	}
}
