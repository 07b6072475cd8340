package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// TrackerServer is the JSON boundary in front of the engine. The scoreboard
// frontend is the only consumer; handlers stay thin and delegate to the
// services.
type TrackerServer struct {
	players     *service.PlayerService
	matches     *service.MatchService
	leaderboard *service.LeaderboardService
	history     *service.HistoryService
	cfg         *config.Config
	logger      zerolog.Logger
}

func NewTrackerServer(
	players *service.PlayerService,
	matches *service.MatchService,
	leaderboard *service.LeaderboardService,
	history *service.HistoryService,
	cfg *config.Config,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		players:     players,
		matches:     matches,
		leaderboard: leaderboard,
		history:     history,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *TrackerServer) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/history", s.handleHistory)
		r.Post("/matches", s.handleMatch)

		r.Get("/players", s.handlePlayerNames)
		r.Post("/players", s.handleAddPlayer)
		r.Get("/players/{name}/stats", s.handlePlayerStats)
		r.Post("/players/{name}/validate", s.handleValidate)

		r.Delete("/players/{name}", s.handleDeletePlayer)
		r.Put("/players/{name}/credential", s.handleSetCredential)
		r.Put("/players/{name}/rating", s.handleSetRating)
		r.Post("/reset", s.handleReset)
	})
	return r
}

type leaderboardRow struct {
	Rank      int    `json:"rank,omitempty"`
	Name      string `json:"name"`
	Rating    string `json:"rating"`
	WinLoss   string `json:"winLoss"`
	HotStreak bool   `json:"hotStreak"`
	Streak    int    `json:"streak"`
	Active    bool   `json:"active"`
}

func (s *TrackerServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries := s.leaderboard.Build()
	rows := make([]leaderboardRow, 0, len(entries))
	for _, e := range entries {
		row := leaderboardRow{
			Rank:      e.Rank,
			Name:      e.Player.Name,
			WinLoss:   e.Player.WinLossRatio(),
			HotStreak: e.HotStreak(),
			Streak:    e.Player.CurrentStreak,
			Active:    e.Player.Active,
		}
		if e.Player.Active {
			row.Rating = fmt.Sprintf("%.2f", e.Player.CurrentRating)
		} else {
			row.Rating = s.cfg.UnrankedLabel
		}
		rows = append(rows, row)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

func (s *TrackerServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.Entries()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type matchRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

type matchResponse struct {
	Tie     bool   `json:"tie"`
	Message string `json:"message"`

	ID                 string  `json:"id,omitempty"`
	Winner             string  `json:"winner,omitempty"`
	Loser              string  `json:"loser,omitempty"`
	WinnerScore        int     `json:"winnerScore,omitempty"`
	LoserScore         int     `json:"loserScore,omitempty"`
	WinnerRatingDelta  float64 `json:"winnerRatingDelta,omitempty"`
	LoserRatingDelta   float64 `json:"loserRatingDelta,omitempty"`
	WinnerPreMatchRank int     `json:"winnerPreMatchRank,omitempty"`
	LoserPreMatchRank  int     `json:"loserPreMatchRank,omitempty"`
}

func (s *TrackerServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Player1 == "" || req.Player2 == "" || req.Score1 < 0 || req.Score2 < 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "two player names and non-negative scores are required"})
		return
	}

	// Tie branch: no rating effect, only the neutral history line.
	if req.Score1 == req.Score2 {
		for _, name := range []string{req.Player1, req.Player2} {
			if _, err := s.players.Get(name); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		line, err := s.history.RecordTie(req.Player1, req.Player2, req.Score1, req.Score2)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, matchResponse{Tie: true, Message: line})
		return
	}

	outcome, err := s.matches.ProcessMatch(req.Player1, req.Player2, req.Score1, req.Score2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	line, err := s.history.Record(outcome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.players.Save(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, matchResponse{
		Message:            line,
		ID:                 outcome.ID,
		Winner:             outcome.WinnerName,
		Loser:              outcome.LoserName,
		WinnerScore:        outcome.WinnerScore,
		LoserScore:         outcome.LoserScore,
		WinnerRatingDelta:  outcome.WinnerRatingDelta,
		LoserRatingDelta:   outcome.LoserRatingDelta,
		WinnerPreMatchRank: outcome.WinnerPreMatchRank,
		LoserPreMatchRank:  outcome.LoserPreMatchRank,
	})
}

func (s *TrackerServer) handlePlayerNames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"players": s.players.Names()})
}

type addPlayerRequest struct {
	Name       string `json:"name"`
	Credential string `json:"credential"`
}

func (s *TrackerServer) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Credential == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and credential are required"})
		return
	}

	player, err := s.players.Add(req.Name, req.Credential)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"name":   player.Name,
		"rating": fmt.Sprintf("%.2f", player.CurrentRating),
	})
}

func (s *TrackerServer) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	player, err := s.players.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":                player.Name,
		"lifetimeRating":      fmt.Sprintf("%.2f", player.LifetimeRating),
		"lifetimeGamesPlayed": player.LifetimeGamesPlayed,
		"lifetimeWins":        player.LifetimeWins,
		"lifetimeLosses":      player.LifetimeLosses,
		"maxWinStreak":        player.MaxWinStreak,
		"ratingHistory":       player.RatingHistory,
	})
}

type validateRequest struct {
	Credential string `json:"credential"`
}

func (s *TrackerServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := s.players.Validate(chi.URLParam(r, "name"), req.Credential); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

type adminRequest struct {
	AdminPassword string  `json:"adminPassword"`
	Credential    string  `json:"credential,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
}

func (s *TrackerServer) authorizeAdmin(w http.ResponseWriter, req adminRequest) bool {
	if req.AdminPassword != s.cfg.AdminPassword {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid admin password"})
		return false
	}
	return true
}

func (s *TrackerServer) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !s.authorizeAdmin(w, req) {
		return
	}
	if err := s.players.Delete(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *TrackerServer) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !s.authorizeAdmin(w, req) {
		return
	}
	if req.Credential == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "credential is required"})
		return
	}
	if err := s.players.SetCredential(chi.URLParam(r, "name"), req.Credential); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *TrackerServer) handleSetRating(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !s.authorizeAdmin(w, req) {
		return
	}
	if err := s.players.SetRating(chi.URLParam(r, "name"), req.Rating); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *TrackerServer) handleReset(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !s.authorizeAdmin(w, req) {
		return
	}
	if err := s.players.ResetAll(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *TrackerServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMatchInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPlayerExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownPlayer):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidMatch):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
