package config

import (
	"fmt"
	"os"
	"strconv"

	"pingpong-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	ServerPort string
	LogLevel   string

	// Rating engine tunables.
	InitialRating     float64
	KFactor           float64
	PointDiffWeight   float64
	ActivityThreshold int
	RatingFloor       float64

	// Display / history.
	UnrankedLabel string
	HistoryKeep   int

	// Flat-file paths.
	PlayerPath       string
	ScoreHistoryPath string
	GameHistoryPath  string

	// Password for deleting players, editing records and season resets.
	AdminPassword string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		UnrankedLabel:    getEnv("UNRANKED_LABEL", constants.DefaultUnrankedLabel),
		PlayerPath:       getEnv("PLAYER_PATH", constants.DefaultPlayerPath),
		ScoreHistoryPath: getEnv("SCORE_HIST_PATH", constants.DefaultScoreHistoryPath),
		GameHistoryPath:  getEnv("GAME_HIST_PATH", constants.DefaultGameHistoryPath),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
	}

	var err error
	if cfg.InitialRating, err = getEnvFloat("INITIAL_RATING", constants.DefaultInitialRating); err != nil {
		return nil, err
	}
	if cfg.KFactor, err = getEnvFloat("SCORE_CHANGE_K_FACTOR", constants.DefaultKFactor); err != nil {
		return nil, err
	}
	if cfg.PointDiffWeight, err = getEnvFloat("POINT_DIFFERENCE_WEIGHT", constants.DefaultPointDiffWeight); err != nil {
		return nil, err
	}
	if cfg.RatingFloor, err = getEnvFloat("RATING_FLOOR", constants.DefaultRatingFloor); err != nil {
		return nil, err
	}
	if cfg.ActivityThreshold, err = getEnvInt("ACTIVITY_THRESHOLD", constants.DefaultActivityThreshold); err != nil {
		return nil, err
	}
	if cfg.HistoryKeep, err = getEnvInt("GAME_HISTORY_KEEP", constants.DefaultHistoryKeep); err != nil {
		return nil, err
	}

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Float64("initial_rating", cfg.InitialRating).
		Float64("k_factor", cfg.KFactor).
		Float64("point_diff_weight", cfg.PointDiffWeight).
		Int("activity_threshold", cfg.ActivityThreshold).
		Int("history_keep", cfg.HistoryKeep).
		Str("player_path", cfg.PlayerPath).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
