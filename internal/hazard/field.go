package hazard

import (
	"sync"

	"github.com/blastyard/arena-server/internal/arena"
	"github.com/blastyard/arena-server/internal/team"
)

// Field is an in-process stand-in for the hazard-entity subsystem: it tracks
// requested hazards and owns the per-team accumulated-load counters that the
// round core only ever reads. The driving game engine writes load through
// AddLoad (exposed over the HTTP API).
//
// Mutex-guarded; called from the lifecycle goroutine and HTTP handlers.
type Field struct {
	mu      sync.Mutex
	hazards []arena.Vec3
	loads   map[team.ID]float64
}

func NewField() *Field {
	return &Field{loads: make(map[team.ID]float64)}
}

func (f *Field) RequestSpawn(pos arena.Vec3) {
	f.mu.Lock()
	f.hazards = append(f.hazards, pos)
	f.mu.Unlock()
}

// ClearAll removes every hazard and resets the load counters for the next
// round.
func (f *Field) ClearAll() {
	f.mu.Lock()
	f.hazards = nil
	f.loads = make(map[team.ID]float64)
	f.mu.Unlock()
}

// ForceDetonateAll detonates every live hazard at once. Load attribution is
// the engine's concern, so counters are untouched here.
func (f *Field) ForceDetonateAll() {
	f.mu.Lock()
	f.hazards = nil
	f.mu.Unlock()
}

func (f *Field) LoadOf(t team.ID) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	load, ok := f.loads[t]
	return load, ok
}

// AddLoad is the external write hook for accumulated damage.
func (f *Field) AddLoad(t team.ID, amount float64) {
	f.mu.Lock()
	f.loads[t] += amount
	f.mu.Unlock()
}

func (f *Field) ActiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hazards)
}
