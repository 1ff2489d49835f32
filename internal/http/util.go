package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rekk2/event-registration/internal/domain"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// decodeBody reads a JSON body; malformed JSON is reported as a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := readBodyJSON(r, maxBodyBytes, out); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return false
	}
	return true
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		ce  *domain.ConflictError
		ane *domain.AuthenticationError
		aze *domain.AuthorizationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ane):
		return http.StatusUnauthorized
	case errors.As(err, &aze):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Storage and unknown failures are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, status, Fail("internal server error"))
		return
	}
	writeJSON(w, status, Fail(err.Error()))
}

// confirm builds a confirmation message such as "Door A created".
func confirm(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
