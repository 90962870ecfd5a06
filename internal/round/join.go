package round

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blastyard/arena-server/internal/session"
)

// JoinHandler reconciles an asynchronously-connecting player against
// whatever phase the lifecycle currently occupies. It runs on the player's
// own goroutine, concurrently with the lifecycle and every other player's
// handler, and never blocks the lifecycle: the only shared touch point is
// the tracker.
type JoinHandler struct {
	tracker *session.Tracker
	pos     Positioner
	chars   Characters
	surface Surface
	settle  time.Duration
	log     *zap.Logger
}

func NewJoinHandler(tracker *session.Tracker, pos Positioner, chars Characters, surface Surface, settle time.Duration, log *zap.Logger) *JoinHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &JoinHandler{tracker: tracker, pos: pos, chars: chars, surface: surface, settle: settle, log: log}
}

// HandleConnect places a new session. Mid-round the session is folded onto
// the smallest active team; otherwise it waits in the lobby. Either way it
// ends with an immediate relocation to the resolved area, and a respawn
// watcher keeps future characters appearing at the right place.
func (j *JoinHandler) HandleConnect(ctx context.Context, v session.View) {
	go j.watchRespawns(ctx, v.ID)

	dec := j.tracker.AssignJoiner(v.ID)
	if dec.MidRound {
		j.surface.SetStatus(v.ID, "Joining round in progress...", "You're on team "+string(dec.Team))
		j.log.Info("late join", zap.Uint64("session", v.ID), zap.String("team", string(dec.Team)), zap.String("phase", string(dec.Phase)))
	} else {
		j.surface.SetStatus(v.ID, "Intermission", "Next round is starting soon")
		j.log.Info("lobby join", zap.Uint64("session", v.ID))
	}
	j.pos.Relocate(v.ID, AreaFor(dec.Team))
}

// watchRespawns relocates the session's character after every respawn. The
// team is re-read at fire time, never captured at subscription time: a
// player who died in the lobby and respawns mid-round still lands where
// their current team lives.
func (j *JoinHandler) watchRespawns(ctx context.Context, id uint64) {
	events, cancel := j.chars.SubscribeRespawn(id)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			j.settleWait(ctx)
			v, alive := j.tracker.TeamOf(id)
			if !alive {
				return
			}
			j.pos.Relocate(id, AreaFor(v.Team))
		}
	}
}

func (j *JoinHandler) settleWait(ctx context.Context) {
	if j.settle <= 0 {
		return
	}
	t := time.NewTimer(j.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
