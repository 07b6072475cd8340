package service

import (
	"sort"

	"pingpong-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type LeaderboardService struct {
	roster *domain.Roster
	logger zerolog.Logger
}

func NewLeaderboardService(roster *domain.Roster, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{roster: roster, logger: logger}
}

// Build returns the display ordering: active players by current rating
// descending with 1-based ranks, then inactive players alphabetically with
// the unranked sentinel. Equal ratings keep roster insertion order.
func (s *LeaderboardService) Build() []domain.LeaderboardEntry {
	s.roster.Lock()
	players := s.roster.Players()
	snapshots := make([]domain.Player, 0, len(players))
	for _, p := range players {
		snapshots = append(snapshots, p.Snapshot())
	}
	s.roster.Unlock()

	return buildEntries(snapshots)
}

func buildEntries(players []domain.Player) []domain.LeaderboardEntry {
	var active, inactive []domain.Player
	for _, p := range players {
		if p.Active {
			active = append(active, p)
		} else {
			inactive = append(inactive, p)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CurrentRating > active[j].CurrentRating
	})
	sort.Slice(inactive, func(i, j int) bool {
		return inactive[i].Name < inactive[j].Name
	})

	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for i, p := range active {
		entries = append(entries, domain.LeaderboardEntry{Rank: i + 1, Player: p})
	}
	for _, p := range inactive {
		entries = append(entries, domain.LeaderboardEntry{Rank: domain.Unranked, Player: p})
	}
	return entries
}

// activeRanks maps each active player to its 1-based rank under the
// leaderboard ordering. Inactive players are absent. Caller must hold the
// roster lock.
func activeRanks(players []*domain.Player) map[string]int {
	var active []*domain.Player
	for _, p := range players {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CurrentRating > active[j].CurrentRating
	})

	ranks := make(map[string]int, len(active))
	for i, p := range active {
		ranks[p.Name] = i + 1
	}
	return ranks
}
