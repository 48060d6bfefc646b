package api

import (
	"net/http"

	"github.com/okian/etude/internal/domain/types"
)

// ScoresHandler serves stored grades.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleGetScore handles GET /scores/{record_id} requests.
func (h *ScoresHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r, "/scores/")
	if !ok {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	g, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewScoreView(g.RecordID, g.Title, g.Grade, g.Metrics))
}
