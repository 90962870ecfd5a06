package round

import "github.com/blastyard/arena-server/internal/team"

// LoadReader exposes the externally-owned per-team load counters.
type LoadReader interface {
	LoadOf(t team.ID) (float64, bool)
}

// EvaluateLoss picks the team with the strictly greatest accumulated load.
// Teams are scanned in registry order and a tie keeps the earlier team.
// If every counter is absent, or no load is positive, there is no loser:
// an all-zero round eliminates nobody.
func EvaluateLoss(order []team.ID, loads LoadReader) (team.ID, bool) {
	var loser team.ID
	var best float64
	found := false
	for _, t := range order {
		load, ok := loads.LoadOf(t)
		if !ok {
			continue
		}
		if !found || load > best {
			loser, best, found = t, load, true
		}
	}
	if !found || best <= 0 {
		return "", false
	}
	return loser, true
}
