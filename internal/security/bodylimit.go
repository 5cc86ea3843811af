package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/noah-isme/theater-billing/internal/common"
)

// CodePayloadTooLarge is the error code returned for oversized bodies.
const CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

// BodyLimit caps invoice and play payloads. Bodies are buffered so handlers
// decode from memory and never see a partially read stream.
type BodyLimit struct {
	Max int64
}

// Middleware answers 413 for bodies over Max. GET, HEAD and DELETE pass through untouched.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Body == http.NoBody || !carriesBody(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			tooLarge(w, b.Max)
			return
		}

		buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, b.Max))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				tooLarge(w, maxErr.Limit)
				return
			}
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidRequest, "invalid request body", nil)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return false
	}
	return true
}

func tooLarge(w http.ResponseWriter, limit int64) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request entity too large",
		map[string]any{"limit_bytes": limit})
}
