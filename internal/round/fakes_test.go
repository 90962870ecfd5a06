package round

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blastyard/arena-server/internal/session"
)

// Test doubles for the external collaborators. All record their calls under
// a mutex; the lifecycle runs on its own goroutine in these tests.

type relocation struct {
	ID   uint64
	Area string
}

type fakePositioner struct {
	mu    sync.Mutex
	moves []relocation
}

func (f *fakePositioner) Relocate(id uint64, area string) {
	f.mu.Lock()
	f.moves = append(f.moves, relocation{ID: id, Area: area})
	f.mu.Unlock()
}

func (f *fakePositioner) lastAreaOf(id uint64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.moves) - 1; i >= 0; i-- {
		if f.moves[i].ID == id {
			return f.moves[i].Area, true
		}
	}
	return "", false
}

type fakeChars struct {
	mu       sync.Mutex
	existing map[uint64]bool
	killed   []uint64
	respawns map[uint64]chan struct{}
}

func newFakeChars() *fakeChars {
	return &fakeChars{existing: make(map[uint64]bool), respawns: make(map[uint64]chan struct{})}
}

func (f *fakeChars) setExists(id uint64, exists bool) {
	f.mu.Lock()
	f.existing[id] = exists
	f.mu.Unlock()
}

func (f *fakeChars) Exists(id uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[id]
}

func (f *fakeChars) Kill(id uint64) {
	f.mu.Lock()
	f.killed = append(f.killed, id)
	f.existing[id] = false
	f.mu.Unlock()
}

func (f *fakeChars) killedIDs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.killed...)
}

func (f *fakeChars) SubscribeRespawn(id uint64) (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.respawns[id]
	if !ok {
		ch = make(chan struct{}, 4)
		f.respawns[id] = ch
	}
	return ch, func() {}
}

// fireRespawn buffers the event even if the watcher has not subscribed yet,
// so tests never race the subscription goroutine.
func (f *fakeChars) fireRespawn(id uint64) {
	f.mu.Lock()
	ch, ok := f.respawns[id]
	if !ok {
		ch = make(chan struct{}, 4)
		f.respawns[id] = ch
	}
	f.mu.Unlock()
	ch <- struct{}{}
}

type statusCall struct {
	ID          uint64
	Top, Bottom string
}

type overlayCall struct {
	ID          uint64
	Visible     bool
	Top, Bottom string
	Won         bool
}

type fakeSurface struct {
	mu       sync.Mutex
	statuses []statusCall
	overlays []overlayCall
}

func (f *fakeSurface) SetStatus(id uint64, top, bottom string) {
	f.mu.Lock()
	f.statuses = append(f.statuses, statusCall{ID: id, Top: top, Bottom: bottom})
	f.mu.Unlock()
}

func (f *fakeSurface) SetOutcomeOverlay(id uint64, visible bool, top, bottom string, won bool) {
	f.mu.Lock()
	f.overlays = append(f.overlays, overlayCall{ID: id, Visible: visible, Top: top, Bottom: bottom, Won: won})
	f.mu.Unlock()
}

func (f *fakeSurface) lastStatusOf(id uint64) (statusCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.statuses) - 1; i >= 0; i-- {
		if f.statuses[i].ID == id {
			return f.statuses[i], true
		}
	}
	return statusCall{}, false
}

func (f *fakeSurface) lastOverlayOf(id uint64) (overlayCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.overlays) - 1; i >= 0; i-- {
		if f.overlays[i].ID == id {
			return f.overlays[i], true
		}
	}
	return overlayCall{}, false
}

type fakeLedger struct {
	mu      sync.Mutex
	coins   map[string]int
	wins    map[string]int
	credits map[string]int // number of credit signals, to pin exactly-once
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{coins: make(map[string]int), wins: make(map[string]int), credits: make(map[string]int)}
}

func (f *fakeLedger) CreditCurrency(s session.View, amount int) {
	f.mu.Lock()
	f.coins[s.Name] += amount
	f.credits[s.Name]++
	f.mu.Unlock()
}

func (f *fakeLedger) IncrementWinCount(s session.View) {
	f.mu.Lock()
	f.wins[s.Name]++
	f.mu.Unlock()
}

func (f *fakeLedger) balance(name string) (coins, wins, credits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coins[name], f.wins[name], f.credits[name]
}

type fakeBots struct {
	resets atomic.Int64
}

func (f *fakeBots) ResetSignal() { f.resets.Add(1) }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, within time.Duration, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
