package constants

import "time"

// Rating engine defaults. The K factor is the most points a game can swing
// before the logistic expectation is applied; the point-difference weight
// scales the final margin into extra K.
const (
	DefaultInitialRating     = 1000.0
	DefaultKFactor           = 70.0
	DefaultPointDiffWeight   = 6.0
	DefaultRatingFloor       = 100.0
	DefaultActivityThreshold = 3
)

const (
	DefaultUnrankedLabel = "Unranked"
	DefaultHistoryKeep   = 30
)

const (
	DefaultPlayerPath       = "./game_data/players.txt"
	DefaultScoreHistoryPath = "./game_data/score_history.txt"
	DefaultGameHistoryPath  = "./game_data/game_history.txt"
)

const (
	RequestTimeout  = 30 * time.Second
	ShutdownTimeout = 5 * time.Second
)
