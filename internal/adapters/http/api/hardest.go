package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/etude/internal/domain/types"
)

// HardestHandler serves the hardest-pieces ranking.
type HardestHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewHardestHandler creates a new hardest handler.
func NewHardestHandler(deps Dependencies, maxLimit int) *HardestHandler {
	return &HardestHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetHardest handles GET /hardest?limit=N requests.
func (h *HardestHandler) HandleGetHardest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_hardest"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			WrapKind(op, ErrBadRequest, errors.New("limit above "+strconv.Itoa(h.maxLimit))))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	out := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e))
	}
	writeJSON(w, http.StatusOK, out)
}
