package services

import (
	"context"
	"strings"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
)

type GameService struct {
	gameRepo repositories.GameRepository
}

func NewGameService(gameRepo repositories.GameRepository) *GameService {
	return &GameService{gameRepo: gameRepo}
}

func (s *GameService) Create(ctx context.Context, game *models.Game) error {
	game.Name = strings.TrimSpace(game.Name)
	game.ShortName = strings.TrimSpace(game.ShortName)
	if game.Name == "" || game.ShortName == "" {
		return newValidationError(ValidationEmptyName, "game name and short name are required")
	}
	if game.RosterMainSize < 1 {
		game.RosterMainSize = 1
	}
	if game.RosterSubstituteSize < 0 {
		game.RosterSubstituteSize = 0
	}
	return s.gameRepo.Create(ctx, game)
}

func (s *GameService) GetByID(ctx context.Context, id int) (*models.Game, error) {
	return s.gameRepo.GetByID(ctx, id)
}

func (s *GameService) List(ctx context.Context) ([]models.Game, error) {
	return s.gameRepo.List(ctx)
}

func (s *GameService) Update(ctx context.Context, game *models.Game) error {
	return s.gameRepo.Update(ctx, game)
}

func (s *GameService) Delete(ctx context.Context, id int) error {
	return s.gameRepo.Delete(ctx, id)
}
