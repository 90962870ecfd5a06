package team

import (
	"errors"
	"fmt"
	"strings"
)

var ErrTooFewTeams = errors.New("at least two active teams required")
var ErrReservedName = errors.New("team name is reserved")
var ErrDuplicateTeam = errors.New("duplicate team name")

// ID names one team. The zero value is not a valid team.
type ID string

// Lobby is the pseudo-team for connected players who are not in active play.
// It is never part of a Registry's active set.
const Lobby ID = "lobby"

// Registry holds the fixed, ordered set of active teams for the process
// lifetime. Order matters: round-robin assignment and loss tie-breaking both
// walk teams in registry order. Membership lives in the session tracker, not
// here; the registry is pure team-identity data.
type Registry struct {
	order []ID
	index map[ID]int
}

func NewRegistry(names []string) (*Registry, error) {
	if len(names) < 2 {
		return nil, ErrTooFewTeams
	}
	r := &Registry{
		order: make([]ID, 0, len(names)),
		index: make(map[ID]int, len(names)),
	}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			return nil, fmt.Errorf("blank team name in %v", names)
		}
		id := ID(name)
		if id == Lobby {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
		}
		if _, dup := r.index[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeam, name)
		}
		r.index[id] = len(r.order)
		r.order = append(r.order, id)
	}
	return r, nil
}

// Resolve maps a raw name to a registered team. Unknown names are a normal,
// non-fatal outcome for callers.
func (r *Registry) Resolve(name string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := r.index[id]; ok {
		return id, true
	}
	return "", false
}

// Active returns the teams in registry order. The slice is a copy.
func (r *Registry) Active() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) IsActive(id ID) bool {
	_, ok := r.index[id]
	return ok
}

// IndexOf returns a team's position in registry order.
func (r *Registry) IndexOf(id ID) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

func (r *Registry) Len() int { return len(r.order) }
