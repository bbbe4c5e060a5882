package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/ninebox/internal/domain/model"
)

// FlagsHandler handles flag-set and donut-mode requests.
type FlagsHandler struct {
	deps Dependencies
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(deps Dependencies) *FlagsHandler {
	return &FlagsHandler{deps: deps}
}

type flagsRequest struct {
	Flags []string `json:"flags"`
}

// validate checks the requested flags against the closed vocabulary.
// The engine itself does not re-validate; this is the request layer's
// responsibility.
func (r flagsRequest) validate() error {
	for _, f := range r.Flags {
		if !model.Flag(f).IsValid() {
			return fmt.Errorf("%w: unknown flag %q", ErrBadRequest, f)
		}
	}
	return nil
}

// HandleUpdateFlags handles PUT /sessions/{subject}/employees/{id}/flags.
func (h *FlagsHandler) HandleUpdateFlags(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid employee id", ErrBadRequest))
		return
	}
	var req flagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	flags := make([]model.Flag, len(req.Flags))
	for i, f := range req.Flags {
		flags[i] = model.Flag(f)
	}
	if err := h.deps.UpdateEmployeeFlags(r.Context(), r.PathValue("subject"), employeeID, flags); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type donutModeRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleDonutMode handles PUT /sessions/{subject}/donut-mode.
func (h *FlagsHandler) HandleDonutMode(w http.ResponseWriter, r *http.Request) {
	var req donutModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := h.deps.ToggleDonutMode(r.Context(), r.PathValue("subject"), req.Enabled); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
