package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blastyard/arena-server/internal/round"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
	"github.com/blastyard/arena-server/internal/world"
	"github.com/blastyard/arena-server/pkg/types"
)

// Deps wires the connection handler into the rest of the server.
type Deps struct {
	Tracker  *session.Tracker
	Join     *round.JoinHandler
	World    *world.World
	Surfaces *SurfaceHub
	Log      *zap.Logger
}

var nextSessionID atomic.Uint64

// Handler upgrades a player connection and runs its session: register, hand
// off to the join handler, pump UI frames out, then tear everything down on
// close. Each connection gets its own goroutines; the round lifecycle is
// never blocked by any of them.
func Handler(d Deps) http.HandlerFunc {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		player := r.URL.Query().Get("player")
		if player == "" {
			http.Error(w, "missing player", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sid := nextSessionID.Add(1)
		connID := uuid.NewString()
		log.Info("player connected", zap.String("player", player), zap.Uint64("session", sid), zap.String("conn", connID))

		out := d.Surfaces.Register(sid)
		view := d.Tracker.Connect(sid, player)
		d.World.Join(sid, round.AreaFor(team.Lobby))
		defer func() {
			d.Tracker.Disconnect(sid)
			d.World.Leave(sid)
			d.Surfaces.Unregister(sid)
			log.Info("player disconnected", zap.Uint64("session", sid))
		}()

		d.Join.HandleConnect(r.Context(), view)

		// Writer goroutine: drain the surface outbox onto the socket.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop: the client sends nothing we act on beyond keepalives,
		// but reading is what notices the close.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
			var cm types.ClientMessage
			_ = json.Unmarshal(data, &cm)
		}
	}
}
