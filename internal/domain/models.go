package domain

import "fmt"

// Unranked is the rank sentinel for a player who has not played enough
// games to hold a numeric leaderboard position.
const Unranked = 0

// HotStreakThreshold is the consecutive-win count at which a leaderboard
// row carries the streak annotation.
const HotStreakThreshold = 3

type Player struct {
	Name          string
	CurrentRating float64
	GamesPlayed   int
	Wins          int
	Losses        int

	// Credential is compared verbatim at the selection boundary and never
	// reaches the rating engine.
	Credential string

	LifetimeGamesPlayed int
	LifetimeWins        int
	LifetimeLosses      int
	LifetimeRating      float64

	CurrentStreak int
	MaxWinStreak  int

	// Active is derived from GamesPlayed and recomputed after every match.
	Active bool

	// RatingHistory is the lifetime-rating series, seeded at creation and
	// appended once per match played.
	RatingHistory []float64
}

func NewPlayer(name, credential string, initialRating float64) *Player {
	return &Player{
		Name:           name,
		CurrentRating:  initialRating,
		Credential:     credential,
		LifetimeRating: initialRating,
		RatingHistory:  []float64{initialRating},
	}
}

func (p *Player) RecomputeActive(activityThreshold int) {
	p.Active = p.GamesPlayed >= activityThreshold
}

// WinLossRatio matches the legacy "wins/losses" display string.
func (p *Player) WinLossRatio() string {
	if p.GamesPlayed == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", p.Wins, p.Losses)
}

// Snapshot returns a copy safe to hand out past the roster lock.
func (p *Player) Snapshot() Player {
	c := *p
	c.RatingHistory = append([]float64(nil), p.RatingHistory...)
	return c
}

type MatchOutcome struct {
	ID string

	WinnerName  string
	LoserName   string
	WinnerScore int
	LoserScore  int

	WinnerRatingDelta float64
	LoserRatingDelta  float64

	// Pre-match ranks from the leaderboard ordering before this match's
	// ratings were applied. Unranked when the player was inactive.
	WinnerPreMatchRank int
	LoserPreMatchRank  int
}

type LeaderboardEntry struct {
	// Rank is 1-based within the active block, Unranked otherwise.
	Rank   int
	Player Player
}

// HotStreak reports whether the row carries the streak annotation.
func (e LeaderboardEntry) HotStreak() bool {
	return e.Player.CurrentStreak >= HotStreakThreshold
}
