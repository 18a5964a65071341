package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	lzerrors "github.com/lzmap/lzmap/pkg/errors"
	"github.com/lzmap/lzmap/pkg/pipeline"
)

// diagramRequest is the body of POST /v1/diagram and POST /v1/graph.
// It embeds pipeline.Options, so the API surface tracks the pipeline.
type diagramRequest struct {
	pipeline.Options
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// handleDiagram renders the draw.io document for the request and returns it
// as XML. Headers carry the input hash for client-side caching.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.Formats = []string{pipeline.FormatDrawio}

	result, err := s.runner.Execute(r.Context(), req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Input-Hash", result.InputHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatDrawio])
}

// handleGraph returns the flat node/edge list as JSON.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Input-Hash", result.InputHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (diagramRequest, bool) {
	var req diagramRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeStatus(w, r, http.StatusBadRequest, string(lzerrors.ErrCodeInvalidInput), "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// writeError maps pipeline error codes to HTTP statuses. Input problems are
// the client's fault; layout and serialization failures are ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := lzerrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case lzerrors.ErrCodeConfiguration, lzerrors.ErrCodeReference,
		lzerrors.ErrCodeStructural, lzerrors.ErrCodeInvalidInput,
		lzerrors.ErrCodeInvalidFormat:
		status = http.StatusUnprocessableEntity
	case lzerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	}

	var verr *lzerrors.ValidationError
	msg := err.Error()
	if errors.As(err, &verr) && len(verr.Violations) > 0 {
		msg = verr.Violations[0].String()
	}
	s.writeStatus(w, r, status, string(code), msg)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: requestIDFromContext(r.Context()),
	}})
}
