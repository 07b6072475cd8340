package service

import (
	"fmt"

	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// underdogRankGap: the winner must have been ranked more than this many
// places below the loser for the underdog line.
const underdogRankGap = 4

// HistoryService selects the narration line for an outcome and keeps the
// capped history log.
type HistoryService struct {
	repo          *repository.HistoryRepository
	unrankedLabel string
	logger        zerolog.Logger
}

func NewHistoryService(cfg *config.Config, repo *repository.HistoryRepository, logger zerolog.Logger) *HistoryService {
	return &HistoryService{repo: repo, unrankedLabel: cfg.UnrankedLabel, logger: logger}
}

// Narrate picks the message for a rated match. Rules are checked in order
// and the first hit wins: unranked participants, underdog victory, skunk,
// then the default line.
func (s *HistoryService) Narrate(o *domain.MatchOutcome) string {
	winnerDelta := formatDelta(o.WinnerRatingDelta)
	loserDelta := formatDelta(o.LoserRatingDelta)

	if o.WinnerPreMatchRank == domain.Unranked || o.LoserPreMatchRank == domain.Unranked {
		winnerTag := ""
		if o.WinnerPreMatchRank == domain.Unranked {
			winnerTag = fmt.Sprintf(" (%s)", s.unrankedLabel)
		}
		loserTag := ""
		if o.LoserPreMatchRank == domain.Unranked {
			loserTag = fmt.Sprintf(" (%s)", s.unrankedLabel)
		}
		return fmt.Sprintf("%s%s beat %s%s [%d-%d]",
			o.WinnerName, winnerTag, o.LoserName, loserTag, o.WinnerScore, o.LoserScore)
	}

	if o.WinnerPreMatchRank > o.LoserPreMatchRank+underdogRankGap {
		return fmt.Sprintf("%s (ranked #%d) pulled off an UNDERDOG VICTORY against %s (ranked #%d) [%d-%d]: %s / %s",
			o.WinnerName, o.WinnerPreMatchRank, o.LoserName, o.LoserPreMatchRank,
			o.WinnerScore, o.LoserScore, winnerDelta, loserDelta)
	}

	if isSkunk(o.WinnerScore, o.LoserScore) {
		return fmt.Sprintf("%s SKUNKED %s [%d-%d]: %s / %s",
			o.WinnerName, o.LoserName, o.WinnerScore, o.LoserScore, winnerDelta, loserDelta)
	}

	return fmt.Sprintf("%s beat %s [%d-%d]: %s / %s",
		o.WinnerName, o.LoserName, o.WinnerScore, o.LoserScore, winnerDelta, loserDelta)
}

// NarrateTie is the caller's branch for equal scores. Ties never reach the
// rating engine.
func (s *HistoryService) NarrateTie(p1Name, p2Name string, p1Score, p2Score int) string {
	return fmt.Sprintf("Game between %s and %s ended in a tie with score %d to %d",
		p1Name, p2Name, p1Score, p2Score)
}

// Record narrates the outcome and appends it to the capped log, returning
// the persisted line.
func (s *HistoryService) Record(o *domain.MatchOutcome) (string, error) {
	line := s.Narrate(o)
	if err := s.repo.Append(line); err != nil {
		return "", fmt.Errorf("failed to record history entry: %w", err)
	}
	s.logger.Debug().Str("match_id", o.ID).Str("entry", line).Msg("history entry recorded")
	return line, nil
}

// RecordTie appends the tie line for an unrated game.
func (s *HistoryService) RecordTie(p1Name, p2Name string, p1Score, p2Score int) (string, error) {
	line := s.NarrateTie(p1Name, p2Name, p1Score, p2Score)
	if err := s.repo.Append(line); err != nil {
		return "", fmt.Errorf("failed to record tie entry: %w", err)
	}
	return line, nil
}

// Entries returns the stored log, oldest first.
func (s *HistoryService) Entries() ([]string, error) {
	return s.repo.Load()
}

func isSkunk(winnerScore, loserScore int) bool {
	return (winnerScore == 7 && loserScore == 0) || (winnerScore == 11 && loserScore == 1)
}

func formatDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.2f", delta)
	}
	return fmt.Sprintf("%.2f", delta)
}
