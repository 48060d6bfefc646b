package api

import (
	"net/http"

	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/types"
)

// EvaluateHandler grades a record synchronously.
type EvaluateHandler struct {
	deps Dependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// HandleEvaluate handles POST /evaluate. Inapplicable records return 200
// with applicable=false and no difficulty.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var rec record.Score
	if err := decodeJSON(w, r, &rec); err != nil {
		writeKindError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Evaluate(r.Context(), &rec)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewScoreView(res.RecordID, rec.Title, res.Grade, res.Metrics))
}
