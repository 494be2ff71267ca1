package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/synthpad/internal/domain/trigger"
)

// Resetter releases the triggers held by a surface.
type Resetter interface {
	ResetEngine(ctx context.Context, name string) (trigger.Frame, error)
}

// ResetHandler handles POST /reset/{surface}.
type ResetHandler struct {
	resetter Resetter
	notFound error
}

// NewResetHandler creates a reset handler. Errors matching notFound are
// reported as 404.
func NewResetHandler(resetter Resetter, notFound error) *ResetHandler {
	return &ResetHandler{resetter: resetter, notFound: notFound}
}

type resetResponse struct {
	Surface  string        `json:"surface"`
	Released trigger.Frame `json:"released"`
}

// HandleReset handles POST /reset/{surface} requests.
func (h *ResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/reset/"), "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing surface", ErrBadRequest))
		return
	}

	frame, err := h.resetter.ResetEngine(r.Context(), name)
	switch {
	case err == nil:
	case h.notFound != nil && errors.Is(err, h.notFound):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	if frame == nil {
		frame = trigger.Frame{}
	}
	writeJSON(w, http.StatusOK, resetResponse{Surface: name, Released: frame})
}
