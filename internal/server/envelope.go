package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
	"github.com/hyeonlab/moneyflow/backend/internal/validate"
)

// Machine-readable error codes carried in the response envelope.
const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeInternal   = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// envelope is the uniform {data, error} response shape.
type envelope struct {
	Data  any        `json:"data"`
	Error *errorBody `json:"error"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: &errorBody{Code: code, Message: message, Details: details}})
}

// writeServiceError maps the error taxonomy onto HTTP: validation 400,
// not-found 404, settlement conflict 409, everything else a server error.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr *validate.FieldError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, codeValidation, fieldErr.Message, fieldErr.Field)
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidRecurrence),
		errors.Is(err, model.ErrInvalidKind),
		errors.Is(err, model.ErrBillingDayRequired),
		errors.Is(err, model.ErrInvestmentCategoryRequired):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error(), "")
	case errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrGoalFundNotFound),
		errors.Is(err, model.ErrSnapshotNotFound),
		errors.Is(err, model.ErrNoSettlement):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error(), "")
	case errors.Is(err, model.ErrSettlementExists):
		writeError(w, http.StatusConflict, codeConflict, err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error", "")
	}
}
