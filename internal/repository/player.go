package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// playerFieldCount is the legacy players-file layout: name, rating(2dp),
// gamesPlayed, wins, losses, credential, lifetimeGamesPlayed, lifetimeWins,
// lifetimeLosses, lifetimeRating(2dp), currentStreak, maxWinStreak.
const playerFieldCount = 12

type PlayerRepository struct {
	playerPath       string
	scoreHistoryPath string
	threshold        int
	logger           zerolog.Logger
}

func NewPlayerRepository(cfg *config.Config, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		playerPath:       cfg.PlayerPath,
		scoreHistoryPath: cfg.ScoreHistoryPath,
		threshold:        cfg.ActivityThreshold,
		logger:           logger,
	}
}

// Load reads the player table and overlays the rating-history file. A
// missing file is an empty data set; malformed lines are skipped with a
// diagnostic; a name already loaded is never overwritten by a later line.
func (r *PlayerRepository) Load() (*domain.Roster, error) {
	roster := domain.NewRoster()

	data, err := os.ReadFile(r.playerPath)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info().Str("path", r.playerPath).Msg("no player data file, starting with an empty roster")
		return roster, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player file: %w", err)
	}

	roster.Lock()
	defer roster.Unlock()

	for i, line := range splitLines(string(data)) {
		player, err := ParsePlayerLine(line)
		if err != nil {
			r.logger.Warn().Err(&domain.MalformedRecordError{
				File:   r.playerPath,
				Line:   i + 1,
				Reason: err.Error(),
			}).Msg("skipping malformed player record")
			continue
		}
		player.RecomputeActive(r.threshold)
		if addErr := roster.Add(player); addErr != nil {
			r.logger.Warn().Str("name", player.Name).Int("line", i+1).Msg("duplicate player record ignored")
		}
	}

	if err := r.loadScoreHistory(roster); err != nil {
		return nil, err
	}

	r.logger.Info().Int("players", roster.Len()).Msg("players loaded")
	return roster, nil
}

func (r *PlayerRepository) loadScoreHistory(roster *domain.Roster) error {
	data, err := os.ReadFile(r.scoreHistoryPath)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info().Str("path", r.scoreHistoryPath).Msg("no score history file, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read score history file: %w", err)
	}

	for i, line := range splitLines(string(data)) {
		parts := strings.Split(line, ",")
		name := parts[0]
		player := roster.Get(name)
		if player == nil {
			r.logger.Warn().Str("name", name).Int("line", i+1).Msg("score history for unknown player ignored")
			continue
		}

		history := make([]float64, 0, len(parts)-1)
		malformed := false
		for _, raw := range parts[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				r.logger.Warn().Err(&domain.MalformedRecordError{
					File:   r.scoreHistoryPath,
					Line:   i + 1,
					Reason: fmt.Sprintf("bad rating value %q", raw),
				}).Msg("skipping malformed score history record")
				malformed = true
				break
			}
			history = append(history, v)
		}
		if malformed || len(history) == 0 {
			continue
		}
		player.RatingHistory = history
	}

	return nil
}

// Save rewrites the player table and the rating-history file. The two files
// are independent, so they are written concurrently.
func (r *PlayerRepository) Save(roster *domain.Roster) error {
	roster.Lock()
	players := roster.Players()
	playerLines := make([]string, 0, len(players))
	historyLines := make([]string, 0, len(players))
	for _, p := range players {
		playerLines = append(playerLines, FormatPlayerLine(p))
		historyLines = append(historyLines, formatScoreHistoryLine(p))
	}
	roster.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return writeLines(r.playerPath, playerLines)
	})
	g.Go(func() error {
		return writeLines(r.scoreHistoryPath, historyLines)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to save players: %w", err)
	}

	r.logger.Debug().Int("players", len(playerLines)).Msg("players saved")
	return nil
}

// ParsePlayerLine decodes one players-file line. The format predates this
// implementation: plain comma splits, no quoting.
func ParsePlayerLine(line string) (*domain.Player, error) {
	parts := strings.Split(line, ",")
	if len(parts) != playerFieldCount {
		return nil, fmt.Errorf("expected %d fields, got %d", playerFieldCount, len(parts))
	}

	name := parts[0]
	if name == "" {
		return nil, fmt.Errorf("empty player name")
	}

	rating, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("bad rating %q", parts[1])
	}
	lifetimeRating, err := strconv.ParseFloat(parts[9], 64)
	if err != nil {
		return nil, fmt.Errorf("bad lifetime rating %q", parts[9])
	}

	ints := make([]int, 0, 8)
	for _, idx := range []int{2, 3, 4, 6, 7, 8, 10, 11} {
		n, err := strconv.Atoi(parts[idx])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad counter %q", parts[idx])
		}
		ints = append(ints, n)
	}

	p := &domain.Player{
		Name:                name,
		CurrentRating:       rating,
		GamesPlayed:         ints[0],
		Wins:                ints[1],
		Losses:              ints[2],
		Credential:          parts[5],
		LifetimeGamesPlayed: ints[3],
		LifetimeWins:        ints[4],
		LifetimeLosses:      ints[5],
		LifetimeRating:      lifetimeRating,
		CurrentStreak:       ints[6],
		MaxWinStreak:        ints[7],
		RatingHistory:       []float64{lifetimeRating},
	}
	return p, nil
}

// FormatPlayerLine encodes one players-file line. The two rating fields are
// the only values rounded, to two decimals, matching the legacy files.
func FormatPlayerLine(p *domain.Player) string {
	return fmt.Sprintf("%s,%.2f,%d,%d,%d,%s,%d,%d,%d,%.2f,%d,%d",
		p.Name, p.CurrentRating, p.GamesPlayed, p.Wins, p.Losses,
		p.Credential, p.LifetimeGamesPlayed, p.LifetimeWins, p.LifetimeLosses,
		p.LifetimeRating, p.CurrentStreak, p.MaxWinStreak)
}

func formatScoreHistoryLine(p *domain.Player) string {
	parts := make([]string, 0, len(p.RatingHistory)+1)
	parts = append(parts, p.Name)
	for _, v := range p.RatingHistory {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

func splitLines(data string) []string {
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
