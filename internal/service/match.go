package service

import (
	"fmt"
	"sync"

	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/rating"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MatchService turns a completed match into rating updates and a
// MatchOutcome. One match is processed at a time; a second request while
// one is in flight is rejected, not queued.
type MatchService struct {
	roster  *domain.Roster
	engine  *rating.Engine
	matchMu sync.Mutex
	logger  zerolog.Logger
}

func NewMatchService(roster *domain.Roster, engine *rating.Engine, logger zerolog.Logger) *MatchService {
	return &MatchService{roster: roster, engine: engine, logger: logger}
}

// ProcessMatch validates the request, snapshots pre-match ranks, applies
// the rating engine to both sides and returns the outcome. Both records
// are mutated in place; nothing is persisted here.
func (s *MatchService) ProcessMatch(p1Name, p2Name string, p1Score, p2Score int) (*domain.MatchOutcome, error) {
	if p1Name == p2Name {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidMatch, domain.ErrSamePlayer)
	}
	if p1Score == p2Score {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidMatch, domain.ErrTieScore)
	}

	if !s.matchMu.TryLock() {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidMatch, domain.ErrMatchInProgress)
	}
	defer s.matchMu.Unlock()

	s.roster.Lock()
	defer s.roster.Unlock()

	player1 := s.roster.Get(p1Name)
	if player1 == nil {
		return nil, fmt.Errorf("%w: %w %q", domain.ErrInvalidMatch, domain.ErrUnknownPlayer, p1Name)
	}
	player2 := s.roster.Get(p2Name)
	if player2 == nil {
		return nil, fmt.Errorf("%w: %w %q", domain.ErrInvalidMatch, domain.ErrUnknownPlayer, p2Name)
	}

	// Ranks before any rating moves; inactive players are simply absent
	// and fall back to the sentinel.
	ranks := activeRanks(s.roster.Players())

	winner, loser := player1, player2
	winnerScore, loserScore := p1Score, p2Score
	if p2Score > p1Score {
		winner, loser = player2, player1
		winnerScore, loserScore = p2Score, p1Score
	}

	pointDifference := float64(winnerScore - loserScore)

	// Winner first, then loser against the winner's already-updated
	// record, matching the legacy update order.
	winnerDelta := s.engine.ApplyMatchResult(winner, loser, true, pointDifference)
	loserDelta := s.engine.ApplyMatchResult(loser, winner, false, pointDifference)

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match id: %w", err)
	}

	outcome := &domain.MatchOutcome{
		ID:                 id,
		WinnerName:         winner.Name,
		LoserName:          loser.Name,
		WinnerScore:        winnerScore,
		LoserScore:         loserScore,
		WinnerRatingDelta:  winnerDelta,
		LoserRatingDelta:   loserDelta,
		WinnerPreMatchRank: rankOrUnranked(ranks, winner.Name),
		LoserPreMatchRank:  rankOrUnranked(ranks, loser.Name),
	}

	s.logger.Info().
		Str("match_id", outcome.ID).
		Str("winner", outcome.WinnerName).
		Str("loser", outcome.LoserName).
		Int("winner_score", outcome.WinnerScore).
		Int("loser_score", outcome.LoserScore).
		Float64("winner_delta", outcome.WinnerRatingDelta).
		Float64("loser_delta", outcome.LoserRatingDelta).
		Msg("match processed")

	return outcome, nil
}

func rankOrUnranked(ranks map[string]int, name string) int {
	if rank, ok := ranks[name]; ok {
		return rank
	}
	return domain.Unranked
}
