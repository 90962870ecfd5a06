package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blastyard/arena-server/internal/hazard"
	"github.com/blastyard/arena-server/internal/round"
	"github.com/blastyard/arena-server/internal/session"
	"github.com/blastyard/arena-server/internal/team"
)

type TeamView struct {
	Team string  `json:"team"`
	Size int     `json:"size"`
	Load float64 `json:"load"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RoundStatus reports the lifecycle's public snapshot.
func RoundStatus(loop *round.Loop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := loop.Status()
		writeJSON(w, http.StatusOK, struct {
			Phase            session.Phase `json:"phase"`
			RemainingSeconds float64       `json:"remaining_seconds"`
			Last             *round.Result `json:"last,omitempty"`
		}{st.Phase, st.Remaining.Seconds(), st.Last})
	}
}

// Teams lists every active team with its roster size and accumulated load.
func Teams(teams *team.Registry, tracker *session.Tracker, field *hazard.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]TeamView, 0, teams.Len())
		for _, t := range teams.Active() {
			load, _ := field.LoadOf(t)
			out = append(out, TeamView{Team: string(t), Size: tracker.SizeOf(t), Load: load})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// AddLoad is the hazard subsystem's write hook for per-team accumulated
// damage.
func AddLoad(teams *team.Registry, field *hazard.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := teams.Resolve(chi.URLParam(r, "team"))
		if !ok {
			http.Error(w, "unknown team", http.StatusNotFound)
			return
		}
		var body struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		field.AddLoad(t, body.Amount)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
