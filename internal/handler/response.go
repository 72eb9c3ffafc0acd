package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

func WriteJSON(w http.ResponseWriter, status int, body model.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Println("⚠️ failed to write response:", err)
	}
}

func WriteOK(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, model.OK(data, message))
}

// WriteError maps err to a status code and writes the failure envelope.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Println("❌ request failed:", err)
	}
	WriteJSON(w, status, model.Fail(err))
}

func StatusFor(err error) int {
	var (
		transportErr  *acumbamail.TransportError
		sendErr       *acumbamail.SendError
		capabilityErr *acumbamail.CapabilityError
	)
	switch {
	case appErrors.IsValidation(err), errors.Is(err, appErrors.ErrNotConfigured):
		return http.StatusBadRequest
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrSyncInProgress), errors.Is(err, appErrors.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &transportErr), errors.As(err, &sendErr), errors.As(err, &capabilityErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// DecodeBody reads a JSON request body into v, reporting bad input as a validation error.
func DecodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("body", "invalid request body: "+err.Error())
	}
	return nil
}
