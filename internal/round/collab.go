package round

import (
	"github.com/blastyard/arena-server/internal/arena"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
)

// External collaborators the round lifecycle drives. Every per-session call
// must tolerate a missing target (no entity, no display surface) as a silent
// no-op: one broken player never stalls the round for the rest.

// Positioner moves a session's controlled entity to a named area's reference
// point. No-op if the entity does not currently exist.
type Positioner interface {
	Relocate(sessionID uint64, area string)
}

// Characters is the character-lifecycle collaborator: existence query,
// forced removal, and per-session respawn events. Kill is a kill, not a
// despawn: the collaborator regenerates a character for a still-connected
// session afterward.
type Characters interface {
	Exists(sessionID uint64) bool
	Kill(sessionID uint64)
	// SubscribeRespawn returns a channel that receives one value per
	// respawn of the session's character, plus a cancel func. The channel
	// is closed after cancel.
	SubscribeRespawn(sessionID uint64) (<-chan struct{}, func())
}

// Surface is the per-session UI collaborator. Both calls no-op if the
// session has no active display surface.
type Surface interface {
	SetStatus(sessionID uint64, top, bottom string)
	SetOutcomeOverlay(sessionID uint64, visible bool, top, bottom string, won bool)
}

// HazardField is the external hazard-entity subsystem. The per-team
// accumulated-load counters it owns are read-only from here.
type HazardField interface {
	RequestSpawn(pos arena.Vec3)
	ClearAll()
	ForceDetonateAll()
	LoadOf(t team.ID) (float64, bool)
}

// Ledger receives fire-and-forget reward signals; no result is consumed.
type Ledger interface {
	CreditCurrency(s session.View, amount int)
	IncrementWinCount(s session.View)
}

// BotController receives one reset signal per round setup.
type BotController interface {
	ResetSignal()
}

// AreaFor names the play area for a team; team.Lobby maps to the lobby
// area. World adapters register areas under these names.
func AreaFor(t team.ID) string { return string(t) }
