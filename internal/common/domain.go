package common

import (
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/theater-billing/internal/resilience"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// FromDomain maps catalog, pricing and validation failures to API errors.
// Errors that are already AppErrors are returned unchanged.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var typeErr *theater.UnknownPlayTypeError
	if errors.As(err, &typeErr) {
		return NewAppError(CodeUnknownPlayType, err.Error(), http.StatusUnprocessableEntity, err).
			WithDetails(map[string]any{"type": typeErr.Type})
	}
	if errors.Is(err, theater.ErrUnknownPlay) {
		return NewAppError(CodeUnknownPlay, err.Error(), http.StatusUnprocessableEntity, err)
	}
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return NewAppError(CodeUnavailable, "play catalog temporarily unavailable", http.StatusServiceUnavailable, err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return NewAppError(CodeInvalidRequest, "validation failed", http.StatusBadRequest, err).WithDetails(fields)
	}
	return NewAppError(CodeInternal, "internal error", http.StatusInternalServerError, err)
}
