package api

import (
	"net/http"

	"github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/internal/domain/types"
)

// SubmissionsHandler accepts records for asynchronous grading.
type SubmissionsHandler struct {
	deps Dependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// HandlePostSubmission handles POST /submissions requests.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.SubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeKindError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), model.Submission{
		SubmissionID: req.SubmissionID,
		RecordID:     req.RecordID,
		Record:       req.Record,
	})
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}

	resp := types.SubmissionResponse{
		Status:       "accepted",
		SubmissionID: res.SubmissionID,
		RecordID:     res.RecordID,
		Duplicate:    res.Duplicate,
	}
	if res.Duplicate {
		resp.Status = "duplicate"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
