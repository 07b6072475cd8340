package service

import (
	"fmt"

	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// PlayerService owns roster lifecycle: adding and deleting players,
// credential checks, administrative edits and season resets. Every
// mutation here persists immediately; match processing persists through
// the caller instead.
type PlayerService struct {
	roster *domain.Roster
	repo   *repository.PlayerRepository
	cfg    *config.Config
	logger zerolog.Logger
}

func NewPlayerService(roster *domain.Roster, repo *repository.PlayerRepository, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	return &PlayerService{roster: roster, repo: repo, cfg: cfg, logger: logger}
}

func (s *PlayerService) Add(name, credential string) (domain.Player, error) {
	player := domain.NewPlayer(name, credential, s.cfg.InitialRating)
	player.RecomputeActive(s.cfg.ActivityThreshold)

	s.roster.Lock()
	err := s.roster.Add(player)
	s.roster.Unlock()
	if err != nil {
		return domain.Player{}, fmt.Errorf("failed to add player %q: %w", name, err)
	}

	s.logger.Info().Str("name", name).Msg("player added")
	if err := s.Save(); err != nil {
		return domain.Player{}, err
	}
	return player.Snapshot(), nil
}

// Validate compares the credential verbatim. It is a boundary check only
// and never reaches the rating engine.
func (s *PlayerService) Validate(name, credential string) error {
	s.roster.Lock()
	defer s.roster.Unlock()

	player := s.roster.Get(name)
	if player == nil {
		return fmt.Errorf("%w %q", domain.ErrUnknownPlayer, name)
	}
	if player.Credential != credential {
		return domain.ErrInvalidCredential
	}
	return nil
}

func (s *PlayerService) Get(name string) (domain.Player, error) {
	s.roster.Lock()
	defer s.roster.Unlock()

	player := s.roster.Get(name)
	if player == nil {
		return domain.Player{}, fmt.Errorf("%w %q", domain.ErrUnknownPlayer, name)
	}
	return player.Snapshot(), nil
}

// Names returns all player names alphabetically, for selection lists.
func (s *PlayerService) Names() []string {
	s.roster.Lock()
	defer s.roster.Unlock()
	return s.roster.SortedNames()
}

// Delete removes the record entirely, including its rating history and its
// slot in the ranking structure.
func (s *PlayerService) Delete(name string) error {
	s.roster.Lock()
	removed := s.roster.Remove(name)
	s.roster.Unlock()
	if !removed {
		return fmt.Errorf("%w %q", domain.ErrUnknownPlayer, name)
	}

	s.logger.Info().Str("name", name).Msg("player deleted")
	return s.Save()
}

// SetCredential is the administrative credential override.
func (s *PlayerService) SetCredential(name, credential string) error {
	s.roster.Lock()
	player := s.roster.Get(name)
	if player != nil {
		player.Credential = credential
	}
	s.roster.Unlock()
	if player == nil {
		return fmt.Errorf("%w %q", domain.ErrUnknownPlayer, name)
	}

	s.logger.Info().Str("name", name).Msg("player credential updated")
	return s.Save()
}

// SetRating is the administrative rating override. It edits the current
// rating only; the lifetime track is untouched.
func (s *PlayerService) SetRating(name string, newRating float64) error {
	s.roster.Lock()
	player := s.roster.Get(name)
	if player != nil {
		player.CurrentRating = newRating
	}
	s.roster.Unlock()
	if player == nil {
		return fmt.Errorf("%w %q", domain.ErrUnknownPlayer, name)
	}

	s.logger.Info().Str("name", name).Float64("rating", newRating).Msg("player rating updated")
	return s.Save()
}

// ResetAll starts a new season: every current rating back to the initial
// value, games, wins, losses and streaks to zero. Lifetime stats and the
// rating history survive the reset.
func (s *PlayerService) ResetAll() error {
	s.roster.Lock()
	for _, player := range s.roster.Players() {
		player.CurrentRating = s.cfg.InitialRating
		player.GamesPlayed = 0
		player.Wins = 0
		player.Losses = 0
		player.CurrentStreak = 0
		player.RecomputeActive(s.cfg.ActivityThreshold)
	}
	count := s.roster.Len()
	s.roster.Unlock()

	s.logger.Info().Int("players", count).Msg("all scores reset")
	return s.Save()
}

// Save persists the full roster and rating histories.
func (s *PlayerService) Save() error {
	return s.repo.Save(s.roster)
}
