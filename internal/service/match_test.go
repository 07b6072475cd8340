package service

import (
	"testing"

	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/rating"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *rating.Engine {
	return rating.New(rating.Params{
		InitialRating:     1000,
		KFactor:           70,
		PointDiffWeight:   6,
		ActivityThreshold: 3,
		RatingFloor:       100,
	})
}

func addPlayer(t *testing.T, roster *domain.Roster, name string, currentRating float64, gamesPlayed int) *domain.Player {
	t.Helper()
	p := domain.NewPlayer(name, "secret", 1000)
	p.CurrentRating = currentRating
	p.GamesPlayed = gamesPlayed
	p.Wins = gamesPlayed
	p.RecomputeActive(3)
	roster.Lock()
	defer roster.Unlock()
	require.NoError(t, roster.Add(p))
	return p
}

func TestProcessMatchRejectsTie(t *testing.T) {
	svc := NewMatchService(domain.NewRoster(), testEngine(), zerolog.Nop())

	_, err := svc.ProcessMatch("Alice", "Bob", 7, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMatch)
	assert.ErrorIs(t, err, domain.ErrTieScore)
}

func TestProcessMatchRejectsSamePlayer(t *testing.T) {
	svc := NewMatchService(domain.NewRoster(), testEngine(), zerolog.Nop())

	_, err := svc.ProcessMatch("Alice", "Alice", 11, 5)
	assert.ErrorIs(t, err, domain.ErrSamePlayer)
}

func TestProcessMatchRejectsUnknownPlayer(t *testing.T) {
	roster := domain.NewRoster()
	addPlayer(t, roster, "Alice", 1000, 5)
	svc := NewMatchService(roster, testEngine(), zerolog.Nop())

	_, err := svc.ProcessMatch("Alice", "Ghost", 11, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMatch)
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)

	// Rejection leaves the known player untouched.
	roster.Lock()
	defer roster.Unlock()
	assert.Equal(t, 5, roster.Get("Alice").GamesPlayed)
}

func TestProcessMatchWinnerBySecondScore(t *testing.T) {
	roster := domain.NewRoster()
	addPlayer(t, roster, "Alice", 1000, 5)
	addPlayer(t, roster, "Bob", 1000, 5)
	svc := NewMatchService(roster, testEngine(), zerolog.Nop())

	outcome, err := svc.ProcessMatch("Alice", "Bob", 5, 11)
	require.NoError(t, err)

	assert.Equal(t, "Bob", outcome.WinnerName)
	assert.Equal(t, "Alice", outcome.LoserName)
	assert.Equal(t, 11, outcome.WinnerScore)
	assert.Equal(t, 5, outcome.LoserScore)
	assert.Greater(t, outcome.WinnerRatingDelta, 0.0)
	assert.Less(t, outcome.LoserRatingDelta, 0.0)
	assert.NotEmpty(t, outcome.ID)
}

func TestProcessMatchPreMatchRanks(t *testing.T) {
	roster := domain.NewRoster()
	addPlayer(t, roster, "Top", 1200, 5)
	addPlayer(t, roster, "Mid", 1100, 5)
	addPlayer(t, roster, "Fresh", 1000, 0)
	svc := NewMatchService(roster, testEngine(), zerolog.Nop())

	// Mid wins big; the recorded ranks predate the rating move.
	outcome, err := svc.ProcessMatch("Mid", "Top", 11, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.WinnerPreMatchRank)
	assert.Equal(t, 1, outcome.LoserPreMatchRank)

	// An inactive participant carries the sentinel.
	outcome, err = svc.ProcessMatch("Fresh", "Top", 11, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.Unranked, outcome.WinnerPreMatchRank)
	assert.NotEqual(t, domain.Unranked, outcome.LoserPreMatchRank)
}

func TestProcessMatchMutatesBothSides(t *testing.T) {
	roster := domain.NewRoster()
	alice := addPlayer(t, roster, "Alice", 1000, 5)
	bob := addPlayer(t, roster, "Bob", 1000, 5)
	svc := NewMatchService(roster, testEngine(), zerolog.Nop())

	_, err := svc.ProcessMatch("Alice", "Bob", 11, 5)
	require.NoError(t, err)

	roster.Lock()
	defer roster.Unlock()
	assert.Equal(t, 6, alice.GamesPlayed)
	assert.Equal(t, 6, bob.GamesPlayed)
	assert.Equal(t, alice.GamesPlayed, alice.Wins+alice.Losses)
	assert.Equal(t, bob.GamesPlayed, bob.Wins+bob.Losses)
	assert.Greater(t, alice.CurrentRating, 1000.0)
	assert.Less(t, bob.CurrentRating, 1000.0)
}
