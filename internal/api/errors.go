package api

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
)

// statusByKind maps every error kind to a response status. It must stay total
// over apperr.Kinds.
var statusByKind = map[apperr.Kind]int{
	apperr.Internal:         http.StatusInternalServerError,
	apperr.InvalidInput:     http.StatusBadRequest,
	apperr.Validation:       http.StatusUnprocessableEntity,
	apperr.NotFound:         http.StatusNotFound,
	apperr.Upstream:         http.StatusBadGateway,
	apperr.StoreUnavailable: http.StatusServiceUnavailable,
	apperr.WorkerFailure:    http.StatusInternalServerError,
	apperr.Timeout:          http.StatusGatewayTimeout,
}

var messageByKind = map[apperr.Kind]string{
	apperr.Internal:         "Internal server error",
	apperr.InvalidInput:     "Invalid request",
	apperr.Validation:       "Validation failed",
	apperr.NotFound:         "Not found",
	apperr.Upstream:         "Upstream service error",
	apperr.StoreUnavailable: "Service temporarily unavailable",
	apperr.WorkerFailure:    "Internal server error",
	apperr.Timeout:          "Request timeout",
}

type errorBody struct {
	Error  string   `json:"error"`
	JobID  string   `json:"job_id,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

type envelope struct {
	Success bool         `json:"success"`
	Status  int          `json:"status"`
	Error   envelopeBody `json:"error"`
}

type envelopeBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// writeError renders err. Client errors carry their own message and details;
// server-side failures get a generic envelope and are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusByKind[kind]

	switch kind {
	case apperr.InvalidInput, apperr.Validation:
		body := errorBody{Error: messageByKind[kind], Errors: apperr.DetailsOf(err)}
		if e := asAppErr(err); e != nil && e.Message != "" {
			body.Error = e.Message
		}
		writeJSON(w, status, body)
		return
	}

	s.log.Error("request failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.String("kind", kind.String()),
		zap.Error(err),
	)
	writeJSON(w, status, envelope{
		Success: false,
		Status:  status,
		Error: envelopeBody{
			Code:      kind.String(),
			Message:   messageByKind[kind],
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func asAppErr(err error) *apperr.Error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
