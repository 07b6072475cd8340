package domain

import (
	"sort"
	"sync"
)

// Roster is the keyed store owning every PlayerRecord. All mutation goes
// through the services holding its lock; insertion order is preserved so
// equal-rating leaderboard ties stay deterministic.
type Roster struct {
	mu      sync.Mutex
	players map[string]*Player
	order   []string
}

func NewRoster() *Roster {
	return &Roster{players: make(map[string]*Player)}
}

func (r *Roster) Lock()   { r.mu.Lock() }
func (r *Roster) Unlock() { r.mu.Unlock() }

// Get returns the record for name, or nil. Caller must hold the lock.
func (r *Roster) Get(name string) *Player {
	return r.players[name]
}

// Add inserts a new record. Names are case-sensitive and never renamed in
// place. Caller must hold the lock.
func (r *Roster) Add(p *Player) error {
	if _, ok := r.players[p.Name]; ok {
		return ErrPlayerExists
	}
	r.players[p.Name] = p
	r.order = append(r.order, p.Name)
	return nil
}

// Remove deletes a record entirely, including its slot in the insertion
// order. Caller must hold the lock.
func (r *Roster) Remove(name string) bool {
	if _, ok := r.players[name]; !ok {
		return false
	}
	delete(r.players, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Players returns the records in insertion order. Caller must hold the lock.
func (r *Roster) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.players[name])
	}
	return out
}

// SortedNames returns all names alphabetically. Caller must hold the lock.
func (r *Roster) SortedNames() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

func (r *Roster) Len() int {
	return len(r.players)
}
