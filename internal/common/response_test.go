package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/theater-billing/internal/resilience"
	"github.com/noah-isme/theater-billing/internal/theater"
)

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestWriteErrorAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewAppError(CodeNotFound, "play not found", http.StatusNotFound, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, CodeNotFound, body.Code)
	require.Equal(t, "play not found", body.Message)
}

func TestWriteErrorPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, CodeInternal, decodeError(t, rec).Code)
}

func TestWriteErrorSyntaxOffset(t *testing.T) {
	var v map[string]any
	syntaxErr := json.Unmarshal([]byte(`{bad`), &v)
	require.Error(t, syntaxErr)

	rec := httptest.NewRecorder()
	WriteError(rec, NewAppError(CodeInvalidRequest, "invalid json", http.StatusBadRequest, syntaxErr))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	details, ok := body.Details.(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "offset")
}

func TestFromDomain(t *testing.T) {
	_, typeErr := theater.ParseGenre("pastoral")
	appErr := FromDomain(fmt.Errorf("price: %w", typeErr))
	require.Equal(t, CodeUnknownPlayType, appErr.Code)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, map[string]any{"type": "pastoral"}, appErr.Details)

	_, lookupErr := theater.Plays{}.Lookup("macbeth")
	appErr = FromDomain(lookupErr)
	require.Equal(t, CodeUnknownPlay, appErr.Code)

	err := theater.Invoice{Performances: []theater.Performance{{Audience: 1}}}.Validate()
	appErr = FromDomain(err)
	require.Equal(t, CodeInvalidRequest, appErr.Code)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

	appErr = FromDomain(fmt.Errorf("get hamlet: %w", resilience.ErrOpenCircuit))
	require.Equal(t, CodeUnavailable, appErr.Code)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)

	original := NewAppError(CodeNotFound, "gone", http.StatusNotFound, nil)
	require.Same(t, original, FromDomain(original))

	require.Equal(t, CodeInternal, FromDomain(errors.New("boom")).Code)
	require.Nil(t, FromDomain(nil))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "unknown, 198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "::ffff:192.0.2.9")
	require.Equal(t, "192.0.2.9", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	require.Equal(t, "192.0.2.4", ClientIP(req))
}
