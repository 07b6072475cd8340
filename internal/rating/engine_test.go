package rating

import (
	"math"
	"testing"

	"pingpong-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{
		InitialRating:     1000,
		KFactor:           70,
		PointDiffWeight:   6,
		ActivityThreshold: 3,
		RatingFloor:       100,
	}
}

func newTestPlayer(name string, rating float64, gamesPlayed int) *domain.Player {
	p := domain.NewPlayer(name, "secret", rating)
	p.GamesPlayed = gamesPlayed
	p.RecomputeActive(3)
	return p
}

func TestExpectedScoreBounds(t *testing.T) {
	e := New(defaultParams())

	pairs := [][2]float64{
		{1000, 1000},
		{1500, 500},
		{-2000, 3000},
		{100, 100.01},
		{0, 10000},
	}
	for _, pair := range pairs {
		expected := e.ExpectedScore(pair[0], pair[1])
		assert.Greater(t, expected, 0.0, "E must be strictly positive for %v", pair)
		assert.Less(t, expected, 1.0, "E must be strictly below one for %v", pair)
	}
}

func TestExpectedScoreEqualRatings(t *testing.T) {
	e := New(defaultParams())
	assert.InDelta(t, 0.5, e.ExpectedScore(1000, 1000), 1e-12)
	assert.InDelta(t, 0.5, e.ExpectedScore(-500, -500), 1e-12)
}

func TestExpectedScoreUses450Scale(t *testing.T) {
	e := New(defaultParams())
	// 450 points of advantage puts the expectation at 1/(1+10^-1).
	assert.InDelta(t, 1.0/1.1, e.ExpectedScore(1450, 1000), 1e-12)
}

func TestApplyMatchResultEqualRatedWin(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("self", 1000, 3)
	opponent := newTestPlayer("opponent", 1000, 3)

	// K = 70 + 5*6 = 100, E = 0.5, no upset bonus at E = 0.5.
	delta := e.ApplyMatchResult(self, opponent, true, 5)

	assert.InDelta(t, 50, delta, 1e-9)
	assert.InDelta(t, 1050, self.CurrentRating, 1e-9)
	assert.Equal(t, 4, self.GamesPlayed)
	assert.Equal(t, 1, self.Wins)
	assert.Equal(t, 0, self.Losses)
	assert.Equal(t, 1, self.CurrentStreak)
	assert.Equal(t, 1, self.MaxWinStreak)
	assert.True(t, self.Active)
}

func TestUpsetBonusOnUnderdogWin(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("underdog", 800, 5)
	opponent := newTestPlayer("favorite", 1000, 5)

	expected := e.ExpectedScore(800, 1000)
	require.Less(t, expected, 0.45)

	k := 70.0 + 4*6
	delta := e.ApplyMatchResult(self, opponent, true, 4)

	assert.InDelta(t, k*(1-expected)*1.3, delta, 1e-9)
}

func TestNoUpsetBonusOnFavoriteLoss(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("favorite", 1000, 5)
	opponent := newTestPlayer("underdog", 800, 5)

	expected := e.ExpectedScore(1000, 800)
	require.Greater(t, expected, 0.65)

	k := 70.0 + 4*6
	delta := e.ApplyMatchResult(self, opponent, false, 4)

	// The bonus applies only to decisive underdog wins.
	assert.InDelta(t, k*(0-expected), delta, 1e-9)
}

func TestKCapAgainstUnrankedOpponent(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("ranked", 1000, 3)
	opponent := newTestPlayer("fresh", 1000, 0)

	// Flat K of 20 overrides any point-difference scaling.
	delta := e.ApplyMatchResult(self, opponent, true, 15)
	assert.InDelta(t, 10, delta, 1e-9)
}

func TestUnrankedVolatilityBoost(t *testing.T) {
	e := New(defaultParams())

	t.Run("both unranked", func(t *testing.T) {
		self := newTestPlayer("a", 1000, 0)
		opponent := newTestPlayer("b", 1000, 0)
		delta := e.ApplyMatchResult(self, opponent, true, 0)
		assert.InDelta(t, 70*1.2*0.5, delta, 1e-9)
	})

	t.Run("only self unranked", func(t *testing.T) {
		self := newTestPlayer("a", 1000, 0)
		opponent := newTestPlayer("b", 1000, 3)
		delta := e.ApplyMatchResult(self, opponent, true, 0)
		assert.InDelta(t, 70*1.2*0.5, delta, 1e-9)
	})
}

func TestLifetimeRatingNeverBelowFloor(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("doomed", 500, 10)
	self.LifetimeRating = 101
	opponent := newTestPlayer("wall", 500, 10)
	opponent.LifetimeRating = 101

	for i := 0; i < 20; i++ {
		e.ApplyMatchResult(self, opponent, false, 21)
		assert.GreaterOrEqual(t, self.LifetimeRating, 100.0)
	}
	assert.InDelta(t, 100, self.LifetimeRating, 1e-9)
}

func TestCurrentRatingMayGoNegative(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("freefall", 30, 10)
	opponent := newTestPlayer("rival", 30, 10)

	e.ApplyMatchResult(self, opponent, false, 21)
	assert.Less(t, self.CurrentRating, 0.0)
}

func TestRatingHistoryAppendsEveryMatch(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("fresh", 1000, 0)
	opponent := newTestPlayer("other", 1000, 5)

	require.Len(t, self.RatingHistory, 1)
	e.ApplyMatchResult(self, opponent, false, 3)
	e.ApplyMatchResult(self, opponent, true, 3)
	assert.Len(t, self.RatingHistory, 3)
	assert.InDelta(t, self.LifetimeRating, self.RatingHistory[2], 1e-9)
}

func TestLifetimeCountersGatedOnActivity(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("fresh", 1000, 0)
	opponent := newTestPlayer("veteran", 1000, 10)

	// First two matches leave the player below the activity threshold.
	e.ApplyMatchResult(self, opponent, true, 2)
	e.ApplyMatchResult(self, opponent, true, 2)
	assert.Equal(t, 0, self.LifetimeGamesPlayed)
	assert.Equal(t, 0, self.LifetimeWins)

	// The third game crosses the threshold before the counters update.
	e.ApplyMatchResult(self, opponent, true, 2)
	assert.True(t, self.Active)
	assert.Equal(t, 1, self.LifetimeGamesPlayed)
	assert.Equal(t, 1, self.LifetimeWins)
}

func TestStreakBookkeeping(t *testing.T) {
	e := New(defaultParams())
	self := newTestPlayer("streaky", 1000, 10)
	opponent := newTestPlayer("other", 1000, 10)

	e.ApplyMatchResult(self, opponent, true, 1)
	e.ApplyMatchResult(self, opponent, true, 1)
	e.ApplyMatchResult(self, opponent, true, 1)
	assert.Equal(t, 3, self.CurrentStreak)
	assert.Equal(t, 3, self.MaxWinStreak)

	e.ApplyMatchResult(self, opponent, false, 1)
	assert.Equal(t, 0, self.CurrentStreak)
	assert.Equal(t, 3, self.MaxWinStreak)

	e.ApplyMatchResult(self, opponent, true, 1)
	assert.Equal(t, 1, self.CurrentStreak)
	assert.Equal(t, 3, self.MaxWinStreak)
}

func TestThreeLossesAgainstActiveOpponent(t *testing.T) {
	e := New(defaultParams())
	alice := newTestPlayer("Alice", 1000, 0)
	bob := newTestPlayer("Bob", 1000, 3)

	for i := 0; i < 3; i++ {
		require.False(t, alice.Active, "Alice must still be unranked before match %d", i+1)
		e.ApplyMatchResult(bob, alice, true, 6)
		e.ApplyMatchResult(alice, bob, false, 6)
	}

	assert.True(t, alice.Active)
	assert.Less(t, alice.CurrentRating, 1000.0)
	assert.Equal(t, 0, alice.CurrentStreak)
	assert.Equal(t, alice.GamesPlayed, alice.Wins+alice.Losses)
	assert.Equal(t, bob.GamesPlayed, 3+bob.Wins+bob.Losses)
}

func TestConfigurableParams(t *testing.T) {
	e := New(Params{
		InitialRating:     1200,
		KFactor:           32,
		PointDiffWeight:   0,
		ActivityThreshold: 1,
		RatingFloor:       0,
	})
	self := newTestPlayer("a", 1200, 0)
	opponent := newTestPlayer("b", 1200, 0)

	// Both unranked with zero games: K = 32 * 1.2.
	delta := e.ApplyMatchResult(self, opponent, true, 10)
	assert.InDelta(t, 32*1.2*0.5, delta, 1e-9)
	assert.True(t, self.Active, "threshold 1 activates after one game")
	assert.False(t, math.Signbit(delta))
}
