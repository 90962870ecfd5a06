package round

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blastyard/arena-server/internal/arena"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
)

// Config fixes the timing and reward shape of every round.
type Config struct {
	Intermission time.Duration // lobby countdown before each round
	RoundTime    time.Duration // active play length
	Tick         time.Duration // countdown broadcast interval
	SettleDelay  time.Duration // pause between team assignment and movement
	ReadDelay    time.Duration // overlay display time before elimination
	CleanupDelay time.Duration // pause before hazards are cleared

	WinnerReward int
	LoserReward  int
}

// Deps are the components and collaborators the lifecycle drives.
type Deps struct {
	Tracker *session.Tracker
	Teams   *team.Registry
	Planner *arena.Planner

	Pos     Positioner
	Chars   Characters
	Surface Surface
	Hazards HazardField
	Ledger  Ledger
	Bots    BotController

	Log *zap.Logger
}

// Result is the outcome of the most recently resolved round.
type Result struct {
	Loser      team.ID   `json:"loser,omitempty"`
	Eliminated bool      `json:"eliminated"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Status is a read-only snapshot of the lifecycle for the HTTP surface.
// Phase itself is owned by the tracker; countdown and last result are
// private to the loop and published only through here.
type Status struct {
	Phase     session.Phase `json:"phase"`
	Remaining time.Duration `json:"remaining"`
	Last      *Result       `json:"last,omitempty"`
}

// Loop drives the round lifecycle: intermission, setup, active play,
// resolution, cleanup, forever. One goroutine runs it for the process
// lifetime; every phase action executes in the order written here.
type Loop struct {
	cfg Config
	d   Deps
	log *zap.Logger

	mu        sync.Mutex
	remaining time.Duration
	last      *Result
}

func NewLoop(cfg Config, d Deps) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{cfg: cfg, d: d, log: log}
}

// Run cycles rounds until ctx is cancelled. Cancellation exists only for
// process shutdown; the loop has no other exit.
func (l *Loop) Run(ctx context.Context) {
	for ctx.Err() == nil {
		l.runIntermission(ctx)
		l.runSetup(ctx)
		l.runActive(ctx)
		l.runResolution(ctx)
		l.runCleanup(ctx)
	}
}

// Status returns the current public snapshot. The tracker query happens
// before the lock is taken: it blocks on the actor, and the mutex must stay
// available to the lifecycle goroutine.
func (l *Loop) Status() Status {
	phase := l.d.Tracker.Phase()
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{Phase: phase, Remaining: l.remaining, Last: l.last}
}

func (l *Loop) runIntermission(ctx context.Context) {
	l.enterPhase(session.PhaseIntermission)
	l.countdown(ctx, l.cfg.Intermission, func(left time.Duration) (string, string) {
		return "Intermission", fmt.Sprintf("Next round in %d...", int(left.Seconds()))
	})
}

func (l *Loop) runSetup(ctx context.Context) {
	l.enterPhase(session.PhaseSetup)

	l.d.Bots.ResetSignal()

	assigned := l.d.Tracker.AssignAll(l.d.Teams.Active())
	l.log.Info("teams assigned", zap.Int("players", len(assigned)))

	l.broadcastStatus("Get ready!", "Teams are set")

	// Let the assignment settle before anything physical moves.
	l.wait(ctx, l.cfg.SettleDelay)

	views := l.d.Tracker.Snapshot()
	for _, v := range views {
		if v.Team == team.Lobby {
			continue
		}
		l.d.Pos.Relocate(v.ID, AreaFor(v.Team))
	}

	count := l.d.Planner.PlannedCount(len(views))
	for i := 0; i < count; i++ {
		l.d.Hazards.RequestSpawn(l.d.Planner.SamplePosition())
	}
	l.log.Info("hazards requested", zap.Int("count", count), zap.Int("population", len(views)))
}

func (l *Loop) runActive(ctx context.Context) {
	l.enterPhase(session.PhaseActive)
	l.countdown(ctx, l.cfg.RoundTime, func(left time.Duration) (string, string) {
		return "Survive!", fmt.Sprintf("Round ends in %d...", int(left.Seconds()))
	})
}

func (l *Loop) runResolution(ctx context.Context) {
	l.enterPhase(session.PhaseResolution)

	// Anything still live goes off at the bell, so its damage is on the
	// books before the loss is read.
	l.d.Hazards.ForceDetonateAll()

	loser, eliminated := EvaluateLoss(l.d.Teams.Active(), l.d.Hazards)
	l.setResult(Result{Loser: loser, Eliminated: eliminated, ResolvedAt: time.Now()})

	if !eliminated {
		l.log.Info("round resolved with no elimination")
		l.broadcastStatus("Round over", "No team is eliminated this round")
		return
	}

	l.log.Info("round resolved", zap.String("loser", string(loser)))
	l.broadcastStatus("Round over", fmt.Sprintf("Team %s took the most damage!", loser))

	for _, v := range l.d.Tracker.Snapshot() {
		won := v.Team != loser
		reward := l.cfg.WinnerReward
		verdict := "You survived!"
		if !won {
			reward = l.cfg.LoserReward
			verdict = "Your team is out!"
		}
		l.d.Surface.SetOutcomeOverlay(v.ID, true, verdict, fmt.Sprintf("+%d coins", reward), won)
		l.d.Ledger.CreditCurrency(v, reward)
		if won {
			l.d.Ledger.IncrementWinCount(v)
		}
	}

	// Give players time to read the overlay before anyone is moved.
	l.wait(ctx, l.cfg.ReadDelay)

	// Re-query the roster: it may have changed while the overlay was up.
	for _, v := range l.d.Tracker.RosterOf(loser) {
		l.d.Tracker.SetTeam(v.ID, team.Lobby)
		l.d.Pos.Relocate(v.ID, AreaFor(team.Lobby))
		if l.d.Chars.Exists(v.ID) {
			l.d.Chars.Kill(v.ID)
		}
	}
}

func (l *Loop) runCleanup(ctx context.Context) {
	l.enterPhase(session.PhaseCleanup)

	for _, v := range l.d.Tracker.Snapshot() {
		l.d.Surface.SetOutcomeOverlay(v.ID, false, "", "", false)
	}

	l.wait(ctx, l.cfg.CleanupDelay)

	l.d.Hazards.ClearAll()

	for _, v := range l.d.Tracker.Snapshot() {
		l.d.Tracker.SetTeam(v.ID, team.Lobby)
		l.d.Pos.Relocate(v.ID, AreaFor(team.Lobby))
	}
}

func (l *Loop) enterPhase(p session.Phase) {
	l.d.Tracker.SetPhase(p)
	l.setRemaining(0)
	l.log.Info("phase entered", zap.String("phase", string(p)))
}

// countdown broadcasts the remaining time every tick until total elapses.
// The timer is the sole driver of phase advance.
func (l *Loop) countdown(ctx context.Context, total time.Duration, status func(left time.Duration) (string, string)) {
	deadline := time.Now().Add(total)
	for {
		left := time.Until(deadline)
		if left <= 0 || ctx.Err() != nil {
			l.setRemaining(0)
			return
		}
		l.setRemaining(left)
		top, bottom := status(left)
		l.broadcastStatus(top, bottom)

		step := l.cfg.Tick
		if left < step {
			step = left
		}
		l.wait(ctx, step)
	}
}

func (l *Loop) broadcastStatus(top, bottom string) {
	for _, v := range l.d.Tracker.Snapshot() {
		l.d.Surface.SetStatus(v.ID, top, bottom)
	}
}

func (l *Loop) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (l *Loop) setRemaining(d time.Duration) {
	l.mu.Lock()
	l.remaining = d
	l.mu.Unlock()
}

func (l *Loop) setResult(r Result) {
	l.mu.Lock()
	l.last = &r
	l.mu.Unlock()
}
