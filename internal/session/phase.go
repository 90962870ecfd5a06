package session

// Phase is the round lifecycle stage. It lives here, not in the round
// package, because the tracker is the single serialization point: every
// phase read taken by a concurrent join must be atomic with the team
// mutation it decides, so the tracker owns the value.
type Phase string

const (
	PhaseIntermission Phase = "intermission"
	PhaseSetup        Phase = "setup"
	PhaseActive       Phase = "active"
	PhaseResolution   Phase = "resolution"
	PhaseCleanup      Phase = "cleanup"
)

// MidRound reports whether a round is in progress, i.e. a player connecting
// now must be folded into live play rather than parked in the lobby.
func (p Phase) MidRound() bool {
	return p != PhaseIntermission && p != ""
}
