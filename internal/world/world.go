package world

import (
	"sync"
	"time"

	"github.com/blastyard/arena-server/internal/arena"
)

// SpawnHeight is the fixed vertical offset above an area's reference point
// that entities are placed at, so they drop in rather than clip the floor.
const SpawnHeight = 6.0

type entity struct {
	pos arena.Vec3
}

// World is an in-process stand-in for the engine's positioning and
// character-lifecycle systems: named areas, one optional entity per session,
// and respawn event fan-out. Relocating or killing a session with no entity
// is a no-op, matching the collaborator contract.
type World struct {
	mu       sync.Mutex
	areas    map[string]arena.Vec3
	entities map[uint64]*entity
	watchers map[uint64][]chan struct{}
	joined   map[uint64]bool

	respawnDelay time.Duration
}

func New(areas map[string]arena.Vec3, respawnDelay time.Duration) *World {
	copied := make(map[string]arena.Vec3, len(areas))
	for name, p := range areas {
		copied[name] = p
	}
	return &World{
		areas:        copied,
		entities:     make(map[uint64]*entity),
		watchers:     make(map[uint64][]chan struct{}),
		joined:       make(map[uint64]bool),
		respawnDelay: respawnDelay,
	}
}

// Join registers the session and spawns its first character in the given
// area.
func (w *World) Join(sessionID uint64, area string) {
	w.mu.Lock()
	w.joined[sessionID] = true
	w.mu.Unlock()
	w.spawn(sessionID, area)
}

// Leave removes the session, its entity, and closes its respawn channels.
func (w *World) Leave(sessionID uint64) {
	w.mu.Lock()
	delete(w.joined, sessionID)
	delete(w.entities, sessionID)
	for _, ch := range w.watchers[sessionID] {
		close(ch)
	}
	delete(w.watchers, sessionID)
	w.mu.Unlock()
}

// Relocate moves the session's entity to the area's reference point plus
// the spawn height. Unknown area or missing entity is a no-op.
func (w *World) Relocate(sessionID uint64, area string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ref, ok := w.areas[area]
	if !ok {
		return
	}
	e, ok := w.entities[sessionID]
	if !ok {
		return
	}
	e.pos = arena.Vec3{X: ref.X, Y: ref.Y + SpawnHeight, Z: ref.Z}
}

func (w *World) Exists(sessionID uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entities[sessionID]
	return ok
}

// Kill removes the session's current entity and, if the session is still
// connected after the respawn delay, regenerates one and fires the respawn
// event. Kill of a non-existent entity is a no-op.
func (w *World) Kill(sessionID uint64) {
	w.mu.Lock()
	if _, ok := w.entities[sessionID]; !ok {
		w.mu.Unlock()
		return
	}
	delete(w.entities, sessionID)
	w.mu.Unlock()

	go func() {
		time.Sleep(w.respawnDelay)
		w.spawn(sessionID, "")
	}()
}

// SubscribeRespawn returns a channel receiving one value per respawn of the
// session's character. The cancel func detaches the subscription.
func (w *World) SubscribeRespawn(sessionID uint64) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 4)
	w.mu.Lock()
	w.watchers[sessionID] = append(w.watchers[sessionID], ch)
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		chans := w.watchers[sessionID]
		for i, c := range chans {
			if c == ch {
				w.watchers[sessionID] = append(chans[:i], chans[i+1:]...)
				close(c)
				return
			}
		}
	}
	return ch, cancel
}

// Position reports the entity's current position, for tests and debugging.
func (w *World) Position(sessionID uint64) (arena.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[sessionID]
	if !ok {
		return arena.Vec3{}, false
	}
	return e.pos, true
}

// spawn creates an entity (if the session is still connected) and notifies
// respawn watchers. An empty area leaves the entity at the origin; the
// respawn watcher relocates it anyway.
func (w *World) spawn(sessionID uint64, area string) {
	w.mu.Lock()
	if !w.joined[sessionID] {
		w.mu.Unlock()
		return
	}
	e := &entity{}
	if ref, ok := w.areas[area]; ok {
		e.pos = arena.Vec3{X: ref.X, Y: ref.Y + SpawnHeight, Z: ref.Z}
	}
	w.entities[sessionID] = e
	// Notify under the lock so a concurrent Leave cannot close a channel
	// mid-send. Sends are non-blocking: a slow watcher drops the event.
	for _, ch := range w.watchers[sessionID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	w.mu.Unlock()
}
