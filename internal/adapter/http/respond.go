package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// errorBody is the uniform error payload. ProgressRetained tells the
// client a refused transition kept all prior work.
type errorBody struct {
	Error            string   `json:"error"`
	Step             string   `json:"step,omitempty"`
	Missing          []string `json:"missing,omitempty"`
	ProgressRetained bool     `json:"progress_retained"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses: refused transitions
// are 409, malformed input 400, unknown sessions 404, unreachable
// backends 503 and unusable generations 502.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), ProgressRetained: true}

	var mp *domain.MissingPrerequisiteError
	if errors.As(err, &mp) {
		body.Step = mp.Step.String()
		body.Missing = mp.Missing
		writeJSON(w, http.StatusConflict, body)
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Step = ve.Step.String()
		writeJSON(w, http.StatusBadRequest, body)
		return
	}
	var sf *domain.StepFailure
	if errors.As(err, &sf) {
		body.Step = sf.Step.String()
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, body)
	case errors.Is(err, domain.ErrBackendUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, body)
	case errors.Is(err, domain.ErrGenerationFailed):
		writeJSON(w, http.StatusBadGateway, body)
	case errors.Is(err, domain.ErrSessionReset):
		body.ProgressRetained = false
		writeJSON(w, http.StatusConflict, body)
	default:
		writeJSON(w, http.StatusInternalServerError, body)
	}
}
