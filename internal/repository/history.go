package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"pingpong-tracker/internal/config"

	"github.com/rs/zerolog"
)

// HistoryRepository owns the narration log file. Entries are plain lines;
// the file is capped to the most recent entries on every append.
type HistoryRepository struct {
	path   string
	keep   int
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewHistoryRepository(cfg *config.Config, logger zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		path:   cfg.GameHistoryPath,
		keep:   cfg.HistoryKeep,
		logger: logger,
	}
}

// Load returns all stored narration lines, oldest first. A missing file is
// an empty history.
func (r *HistoryRepository) Load() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info().Str("path", r.path).Msg("no game history file, starting with an empty history")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game history: %w", err)
	}
	return splitLines(string(data)), nil
}

// Append stores one narration line and truncates the file to the keep cap.
func (r *HistoryRepository) Append(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lines []string
	data, err := os.ReadFile(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read game history: %w", err)
	}
	if err == nil {
		lines = splitLines(string(data))
	}

	lines = append(lines, line)
	if len(lines) > r.keep {
		lines = lines[len(lines)-r.keep:]
	}

	if err := writeLines(r.path, lines); err != nil {
		return fmt.Errorf("failed to write game history: %w", err)
	}

	r.logger.Debug().Int("entries", len(lines)).Msg("game history appended")
	return nil
}
