package session

import (
	"context"
	"slices"
	"time"

	"github.com/blastyard/arena-server/internal/team"
)

// View is a read-only copy of one session's state, safe to hold outside the
// tracker goroutine.
type View struct {
	ID       uint64
	Name     string
	Team     team.ID
	JoinedAt time.Time
}

// JoinDecision is the outcome of reconciling a newly-connected session
// against the current phase.
type JoinDecision struct {
	Team     team.ID
	MidRound bool
	Phase    Phase
}

type Msg interface{ isTrackerMsg() }

type connect struct {
	ID    uint64
	Name  string
	Reply chan View
}

type disconnect struct{ ID uint64 }

type setTeam struct {
	ID   uint64
	Team team.ID
}

type setPhase struct{ Phase Phase }

type getPhase struct{ Reply chan Phase }

type snapshot struct{ Reply chan []View }

type rosterOf struct {
	Team  team.ID
	Reply chan []View
}

type teamOf struct {
	ID    uint64
	Reply chan View
}

type assignAll struct {
	Teams []team.ID
	Reply chan map[uint64]team.ID
}

type assignJoiner struct {
	ID    uint64
	Reply chan JoinDecision
}

func (connect) isTrackerMsg()      {}
func (disconnect) isTrackerMsg()   {}
func (setTeam) isTrackerMsg()      {}
func (setPhase) isTrackerMsg()     {}
func (getPhase) isTrackerMsg()     {}
func (snapshot) isTrackerMsg()     {}
func (rosterOf) isTrackerMsg()     {}
func (teamOf) isTrackerMsg()       {}
func (assignAll) isTrackerMsg()    {}
func (assignJoiner) isTrackerMsg() {}

// Tracker owns every connected session and the current phase. One goroutine
// services the inbox, so each operation is atomic with respect to every
// other caller. Nothing outside this goroutine mutates session state.
type Tracker struct {
	inbox    chan Msg
	sessions map[uint64]*View
	phase    Phase
	teams    *team.Registry
	ctx      context.Context
}

// NewTracker starts the actor goroutine. It runs until ctx is cancelled.
func NewTracker(ctx context.Context, teams *team.Registry) *Tracker {
	t := &Tracker{
		inbox:    make(chan Msg, 64),
		sessions: make(map[uint64]*View),
		phase:    PhaseIntermission,
		teams:    teams,
		ctx:      ctx,
	}
	go t.loop()
	return t
}

func (t *Tracker) loop() {
	for {
		select {
		case <-t.ctx.Done():
			return

		case m := <-t.inbox:
			switch msg := m.(type) {
			case connect:
				v := &View{ID: msg.ID, Name: msg.Name, Team: team.Lobby, JoinedAt: time.Now()}
				t.sessions[msg.ID] = v
				msg.Reply <- *v

			case disconnect:
				delete(t.sessions, msg.ID)

			case setTeam:
				t.applyTeam(msg.ID, msg.Team)

			case setPhase:
				t.phase = msg.Phase

			case getPhase:
				msg.Reply <- t.phase

			case snapshot:
				msg.Reply <- t.views()

			case rosterOf:
				msg.Reply <- t.roster(msg.Team)

			case teamOf:
				if v, ok := t.sessions[msg.ID]; ok {
					msg.Reply <- *v
				} else {
					msg.Reply <- View{}
				}

			case assignAll:
				msg.Reply <- t.assignRoundRobin(msg.Teams)

			case assignJoiner:
				msg.Reply <- t.reconcileJoiner(msg.ID)
			}
		}
	}
}

// applyTeam is the single membership mutation point. A target that is
// neither Lobby nor a registered active team is dropped: a session is
// always on lobby or a real team.
func (t *Tracker) applyTeam(id uint64, to team.ID) {
	v, ok := t.sessions[id]
	if !ok {
		return
	}
	if to != team.Lobby && !t.teams.IsActive(to) {
		return
	}
	v.Team = to
}

func (t *Tracker) views() []View {
	out := make([]View, 0, len(t.sessions))
	for _, v := range t.sessions {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b View) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

func (t *Tracker) roster(id team.ID) []View {
	var out []View
	for _, v := range t.views() {
		if v.Team == id {
			out = append(out, v)
		}
	}
	return out
}

// assignRoundRobin deals every connected session onto the given teams in
// round-robin order. Sessions are walked sorted by ID, so the result is a
// pure function of the connected set: the same population always produces
// the same assignment.
func (t *Tracker) assignRoundRobin(teams []team.ID) map[uint64]team.ID {
	out := make(map[uint64]team.ID, len(t.sessions))
	if len(teams) == 0 {
		return out
	}
	for i, v := range t.views() {
		to := teams[i%len(teams)]
		t.applyTeam(v.ID, to)
		out[v.ID] = to
	}
	return out
}

// reconcileJoiner folds a late joiner into the round if one is in progress:
// smallest active roster wins, ties go to the earlier team in registry
// order. Outside a round the session stays in the lobby. Phase read and
// team write happen in the same actor turn, so the decision is never based
// on a stale phase.
func (t *Tracker) reconcileJoiner(id uint64) JoinDecision {
	dec := JoinDecision{Team: team.Lobby, Phase: t.phase}
	if _, ok := t.sessions[id]; !ok {
		return dec
	}
	if !t.phase.MidRound() {
		t.applyTeam(id, team.Lobby)
		return dec
	}

	best := team.Lobby
	bestSize := -1
	for _, tm := range t.teams.Active() {
		size := 0
		for _, v := range t.sessions {
			if v.Team == tm && v.ID != id {
				size++
			}
		}
		if bestSize == -1 || size < bestSize {
			best, bestSize = tm, size
		}
	}
	if best == team.Lobby {
		return dec
	}
	t.applyTeam(id, best)
	dec.Team = best
	dec.MidRound = true
	return dec
}

func (t *Tracker) Connect(id uint64, name string) View {
	reply := make(chan View, 1)
	t.inbox <- connect{ID: id, Name: name, Reply: reply}
	return <-reply
}

func (t *Tracker) Disconnect(id uint64) {
	t.inbox <- disconnect{ID: id}
}

// SetTeam routes every team mutation through the tracker goroutine.
func (t *Tracker) SetTeam(id uint64, to team.ID) {
	t.inbox <- setTeam{ID: id, Team: to}
}

func (t *Tracker) SetPhase(p Phase) {
	t.inbox <- setPhase{Phase: p}
}

func (t *Tracker) Phase() Phase {
	reply := make(chan Phase, 1)
	t.inbox <- getPhase{Reply: reply}
	return <-reply
}

func (t *Tracker) Snapshot() []View {
	reply := make(chan []View, 1)
	t.inbox <- snapshot{Reply: reply}
	return <-reply
}

func (t *Tracker) RosterOf(id team.ID) []View {
	reply := make(chan []View, 1)
	t.inbox <- rosterOf{Team: id, Reply: reply}
	return <-reply
}

func (t *Tracker) SizeOf(id team.ID) int {
	return len(t.RosterOf(id))
}

// TeamOf returns the session's current view; ok is false if it is gone.
func (t *Tracker) TeamOf(id uint64) (View, bool) {
	reply := make(chan View, 1)
	t.inbox <- teamOf{ID: id, Reply: reply}
	v := <-reply
	return v, v.ID == id && id != 0
}

func (t *Tracker) AssignAll(teams []team.ID) map[uint64]team.ID {
	reply := make(chan map[uint64]team.ID, 1)
	t.inbox <- assignAll{Teams: teams, Reply: reply}
	return <-reply
}

func (t *Tracker) AssignJoiner(id uint64) JoinDecision {
	reply := make(chan JoinDecision, 1)
	t.inbox <- assignJoiner{ID: id, Reply: reply}
	return <-reply
}
