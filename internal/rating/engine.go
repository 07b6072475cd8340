package rating

import (
	"math"

	"pingpong-tracker/internal/domain"
)

const (
	// ratingScale is the logistic denominator. 450 rather than the
	// classical 400, which softens swings across large rating gaps.
	ratingScale = 450.0

	// unrankedVolatility raises K by 20% while a side is still unranked.
	unrankedVolatility = 1.2

	// rankedVsUnrankedCap is the flat K for a ranked player facing an
	// unranked opponent, regardless of margin.
	rankedVsUnrankedCap = 20.0

	// upsetThreshold/upsetBonus: a win with expected score below the
	// threshold earns the underdog multiplier.
	upsetThreshold = 0.45
	upsetBonus     = 1.3
)

// Params are the engine tunables, injected so the engine stays
// deterministic and testable with varied configurations.
type Params struct {
	InitialRating     float64
	KFactor           float64
	PointDiffWeight   float64
	ActivityThreshold int
	RatingFloor       float64
}

// Engine computes and applies ELO-style rating deltas. It is pure
// calculation over the two records it is handed and has no failure modes.
type Engine struct {
	params Params
}

func New(params Params) *Engine {
	return &Engine{params: params}
}

func (e *Engine) Params() Params {
	return e.params
}

// ExpectedScore is the logistic win expectation of self against opponent.
// Strictly within (0,1) for all finite ratings.
func (e *Engine) ExpectedScore(selfRating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-selfRating)/ratingScale))
}

// scoreChange computes one track's delta: K times actual-minus-expected,
// with the upset bonus on a decisive underdog win.
func (e *Engine) scoreChange(selfRating, opponentRating, result, k float64) float64 {
	expected := e.ExpectedScore(selfRating, opponentRating)
	change := k * (result - expected)
	if expected < upsetThreshold && result == 1 {
		change *= upsetBonus
	}
	return change
}

// ApplyMatchResult applies one side of a completed match to self and
// returns the signed current-rating delta. It must be called once per side
// with the same point difference; activity is evaluated from the records as
// they stand when the call is made.
//
// The lifetime track runs the same formula against the opponent's lifetime
// rating with its own expectation, then clamps at the floor. The two tracks
// diverge over time and never share a delta.
func (e *Engine) ApplyMatchResult(self, opponent *domain.Player, won bool, pointDifference float64) float64 {
	selfUnranked := !self.Active
	opponentUnranked := !opponent.Active

	k := e.params.KFactor + pointDifference*e.params.PointDiffWeight
	switch {
	case selfUnranked && opponentUnranked:
		k *= unrankedVolatility
	case selfUnranked:
		k *= unrankedVolatility
	case opponentUnranked:
		k = rankedVsUnrankedCap
	}

	result := 0.0
	if won {
		result = 1.0
	}

	delta := e.scoreChange(self.CurrentRating, opponent.CurrentRating, result, k)
	self.CurrentRating += delta
	self.GamesPlayed++

	lifetimeDelta := e.scoreChange(self.LifetimeRating, opponent.LifetimeRating, result, k)
	self.LifetimeRating += lifetimeDelta
	if self.LifetimeRating < e.params.RatingFloor {
		self.LifetimeRating = e.params.RatingFloor
	}

	self.RatingHistory = append(self.RatingHistory, self.LifetimeRating)
	self.RecomputeActive(e.params.ActivityThreshold)

	if won {
		self.Wins++
		self.CurrentStreak++
		if self.CurrentStreak > self.MaxWinStreak {
			self.MaxWinStreak = self.CurrentStreak
		}
		if self.Active {
			self.LifetimeWins++
		}
	} else {
		self.Losses++
		self.CurrentStreak = 0
		if self.Active {
			self.LifetimeLosses++
		}
	}
	if self.Active {
		self.LifetimeGamesPlayed++
	}

	return delta
}
