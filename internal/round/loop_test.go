package round

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/blastyard/arena-server/internal/arena"
	"github.com/blastyard/arena-server/internal/hazard"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
)

type loopHarness struct {
	loop    *Loop
	tracker *session.Tracker
	teams   *team.Registry
	field   *hazard.Field
	pos     *fakePositioner
	chars   *fakeChars
	surface *fakeSurface
	ledger  *fakeLedger
	bots    *fakeBots
}

func newLoopHarness(t *testing.T, ctx context.Context) *loopHarness {
	t.Helper()
	reg, err := team.NewRegistry([]string{"red", "yellow", "green", "blue"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	field := arena.Region{Min: arena.Vec3{X: -100, Y: 0, Z: -100}, Max: arena.Vec3{X: 100, Y: 20, Z: 100}}
	ceiling := arena.Region{Min: arena.Vec3{X: -100, Y: 120, Z: -100}, Max: arena.Vec3{X: 100, Y: 130, Z: 100}}
	bounds, err := arena.ComputeBounds(field, ceiling, 10)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	planner := arena.NewPlanner(bounds, arena.PlanConfig{PerPlayerRate: 16, BaseOffset: 10, AbsoluteCap: 250}, rand.New(rand.NewSource(1)))

	h := &loopHarness{
		tracker: session.NewTracker(ctx, reg),
		teams:   reg,
		field:   hazard.NewField(),
		pos:     &fakePositioner{},
		chars:   newFakeChars(),
		surface: &fakeSurface{},
		ledger:  newFakeLedger(),
		bots:    &fakeBots{},
	}
	h.loop = NewLoop(Config{
		Intermission: 20 * time.Millisecond,
		RoundTime:    30 * time.Millisecond,
		Tick:         5 * time.Millisecond,
		SettleDelay:  time.Millisecond,
		ReadDelay:    10 * time.Millisecond,
		CleanupDelay: 5 * time.Millisecond,
		WinnerReward: 25,
		LoserReward:  5,
	}, Deps{
		Tracker: h.tracker,
		Teams:   reg,
		Planner: planner,
		Pos:     h.pos,
		Chars:   h.chars,
		Surface: h.surface,
		Hazards: h.field,
		Ledger:  h.ledger,
		Bots:    h.bots,
	})
	return h
}

func (h *loopHarness) connect(t *testing.T, n int) {
	t.Helper()
	for id := uint64(1); id <= uint64(n); id++ {
		h.tracker.Connect(id, playerName(id))
		h.chars.setExists(id, true)
	}
}

func playerName(id uint64) string {
	return "p" + strconv.FormatUint(id, 10)
}

func TestLoop_FullCycle_EliminatesHighestLoadTeam(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newLoopHarness(t, ctx)
	h.connect(t, 4)

	// Round-robin over sorted IDs puts 1→red, 2→yellow, 3→green, 4→blue.
	// Yellow and green tie at the top; yellow is earlier in registry order.
	h.field.AddLoad("red", 5)
	h.field.AddLoad("yellow", 9)
	h.field.AddLoad("green", 9)
	h.field.AddLoad("blue", 2)

	go h.loop.Run(ctx)

	waitFor(t, 2*time.Second, func() bool {
		st := h.loop.Status()
		return st.Last != nil && st.Last.Eliminated
	}, "round resolution")

	if loser := h.loop.Status().Last.Loser; loser != "yellow" {
		t.Fatalf("want yellow eliminated, got %s", loser)
	}

	// The losing team's player is benched: lobby team, lobby area, killed.
	waitFor(t, 2*time.Second, func() bool {
		v, ok := h.tracker.TeamOf(2)
		if !ok || v.Team != team.Lobby {
			return false
		}
		area, ok := h.pos.lastAreaOf(2)
		return ok && area == AreaFor(team.Lobby)
	}, "loser benched to lobby")

	killed := h.chars.killedIDs()
	if len(killed) != 1 || killed[0] != 2 {
		t.Fatalf("want exactly session 2 killed, got %v", killed)
	}

	// Cleanup returns everyone to the lobby and the next intermission starts.
	waitFor(t, 2*time.Second, func() bool {
		if h.tracker.Phase() != session.PhaseIntermission {
			return false
		}
		for _, v := range h.tracker.Snapshot() {
			if v.Team != team.Lobby {
				return false
			}
		}
		return true
	}, "reset to intermission")
	cancel()

	// Exactly one credit per session, tiered by outcome; winners also get
	// one win increment.
	for id := uint64(1); id <= 4; id++ {
		coins, wins, credits := h.ledger.balance(playerName(id))
		if credits != 1 {
			t.Fatalf("session %d: want exactly 1 credit signal, got %d", id, credits)
		}
		if id == 2 {
			if coins != 5 || wins != 0 {
				t.Fatalf("loser: want 5 coins 0 wins, got %d/%d", coins, wins)
			}
			continue
		}
		if coins != 25 || wins != 1 {
			t.Fatalf("winner %d: want 25 coins 1 win, got %d/%d", id, coins, wins)
		}
	}

	// Losers saw a losing overlay; the last overlay everyone saw is hidden.
	sawLoss := false
	h.surface.mu.Lock()
	for _, o := range h.surface.overlays {
		if o.ID == 2 && o.Visible && !o.Won {
			sawLoss = true
		}
	}
	h.surface.mu.Unlock()
	if !sawLoss {
		t.Fatalf("loser never saw a visible losing overlay")
	}
	if last, ok := h.surface.lastOverlayOf(2); !ok || last.Visible {
		t.Fatalf("overlay not hidden by cleanup: %+v", last)
	}

	if h.bots.resets.Load() < 1 {
		t.Fatalf("bot reset never signaled")
	}
}

func TestLoop_NoLoads_NoElimination(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newLoopHarness(t, ctx)
	h.connect(t, 4)

	go h.loop.Run(ctx)

	waitFor(t, 2*time.Second, func() bool {
		return h.loop.Status().Last != nil
	}, "round resolution")
	cancel()

	if h.loop.Status().Last.Eliminated {
		t.Fatalf("all-zero round must not eliminate anyone")
	}
	if killed := h.chars.killedIDs(); len(killed) != 0 {
		t.Fatalf("no one should be killed, got %v", killed)
	}
	for id := uint64(1); id <= 4; id++ {
		if coins, _, credits := h.ledger.balance(playerName(id)); coins != 0 || credits != 0 {
			t.Fatalf("session %d: no rewards expected, got %d coins over %d credits", id, coins, credits)
		}
	}
}

func TestLoop_SetupRequestsPlannedHazards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newLoopHarness(t, ctx)
	h.connect(t, 4)

	go h.loop.Run(ctx)

	// rate 16, offset 10, population 4 → 224, under the 250 cap.
	waitFor(t, 2*time.Second, func() bool {
		return h.field.ActiveCount() == 224
	}, "planned hazard requests")
}

func TestLoop_StatusDoesNotPinMutexOnStoppedTracker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newLoopHarness(t, ctx)

	// Stop the tracker: its replies stop arriving, so Status blocks on the
	// actor. The loop's own mutex must remain free while it does.
	cancel()
	go h.loop.Status()

	done := make(chan struct{})
	go func() {
		h.loop.setRemaining(time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop mutex held across a blocked tracker query")
	}
}

func TestLoop_CleanupIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newLoopHarness(t, ctx)
	h.connect(t, 3)
	for id := uint64(1); id <= 3; id++ {
		h.tracker.SetTeam(id, "red")
	}
	h.field.AddLoad("red", 4)
	h.field.RequestSpawn(arena.Vec3{})

	check := func() {
		t.Helper()
		for _, v := range h.tracker.Snapshot() {
			if v.Team != team.Lobby {
				t.Fatalf("session %d not in lobby after cleanup", v.ID)
			}
			if last, ok := h.surface.lastOverlayOf(v.ID); !ok || last.Visible {
				t.Fatalf("overlay for %d not hidden after cleanup", v.ID)
			}
			if area, ok := h.pos.lastAreaOf(v.ID); !ok || area != AreaFor(team.Lobby) {
				t.Fatalf("session %d not relocated to lobby", v.ID)
			}
		}
		if h.field.ActiveCount() != 0 {
			t.Fatalf("hazards not cleared")
		}
		if load, ok := h.field.LoadOf("red"); ok && load != 0 {
			t.Fatalf("loads not reset, red=%f", load)
		}
	}

	h.loop.runCleanup(ctx)
	check()
	h.loop.runCleanup(ctx)
	check()
}
