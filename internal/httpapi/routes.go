package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blastyard/arena-server/internal/hazard"
	"github.com/blastyard/arena-server/internal/round"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
)

type Deps struct {
	Loop    *round.Loop
	Tracker *session.Tracker
	Teams   *team.Registry
	Field   *hazard.Field
	WS      http.HandlerFunc
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/round", RoundStatus(d.Loop))
	r.Get("/teams", Teams(d.Teams, d.Tracker, d.Field))
	r.Post("/teams/{team}/load", AddLoad(d.Teams, d.Field))
	r.Get("/ws", d.WS)
	return r
}
