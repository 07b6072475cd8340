package fx

import (
	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/logger"
	"pingpong-tracker/internal/rating"
	"pingpong-tracker/internal/repository"
	"pingpong-tracker/internal/server"
	"pingpong-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideEngine(cfg *config.Config) *rating.Engine {
	return rating.New(rating.Params{
		InitialRating:     cfg.InitialRating,
		KFactor:           cfg.KFactor,
		PointDiffWeight:   cfg.PointDiffWeight,
		ActivityThreshold: cfg.ActivityThreshold,
		RatingFloor:       cfg.RatingFloor,
	})
}

func ProvideRoster(repo *repository.PlayerRepository) (*domain.Roster, error) {
	return repo.Load()
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// persistence
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewHistoryRepository),
	// engine and state
	fx.Provide(ProvideEngine),
	fx.Provide(ProvideRoster),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewHistoryService),
	// server
	fx.Provide(server.NewTrackerServer),
)
