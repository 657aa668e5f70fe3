package services

import (
	"context"
	"errors"

	"github.com/Dosada05/league-standings/models"
	"github.com/Dosada05/league-standings/repositories"
)

type ReferenceService interface {
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	GetDivision(ctx context.Context, tournamentID, divisionID int) (*models.Division, error)
}

type referenceService struct {
	refs repositories.ReferenceRepository
}

func NewReferenceService(refs repositories.ReferenceRepository) ReferenceService {
	return &referenceService{refs: refs}
}

func (s *referenceService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	if id <= 0 {
		return nil, ErrInvalidPlayerID
	}
	player, err := s.refs.GetPlayer(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, ErrPlayerNotFound
	}
	return player, err
}

func (s *referenceService) GetDivision(ctx context.Context, tournamentID, divisionID int) (*models.Division, error) {
	division, err := s.refs.GetDivision(ctx, tournamentID, divisionID)
	if errors.Is(err, repositories.ErrDivisionNotFound) {
		return nil, ErrDivisionNotFound
	}
	return division, err
}
