package httpapi

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/service"
	"github.com/rekk2/event-registration/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUser
)

const RequestIDHeader = "X-Request-ID"

// RequestIDFromContext empty when the request did not pass through WithMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// UserFromContext the authenticated account, nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return u
}

// WithMiddleware request id, access log and HTTP metrics around h.
func WithMiddleware(h http.Handler, logger *zap.Logger) http.Handler {
	return requestIDMiddleware(loggingMiddleware(h, logger))
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// statusRecorder keeps the status code; it forwards Hijack so websocket upgrades still work.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	if s.status == 0 {
		s.status = http.StatusSwitchingProtocols
	}
	return hj.Hijack()
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		// r.Pattern is filled in by the mux; unmatched requests share one label.
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		telemetry.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())

		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
	})
}

// Authenticator resolves the session cookie and gates handlers by role.
type Authenticator struct {
	auth       service.AuthService
	cookieName string
	logger     *zap.Logger
}

func NewAuthenticator(auth service.AuthService, cookieName string, logger *zap.Logger) *Authenticator {
	return &Authenticator{auth: auth, cookieName: cookieName, logger: logger}
}

func (a *Authenticator) token(r *http.Request) string {
	c, err := r.Cookie(a.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Require answers 401 without a valid session and 403 when the role ranks below min.
func (a *Authenticator) Require(min domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.auth.Resolve(r.Context(), a.token(r))
		if err != nil {
			writeError(w, r, a.logger, "Resolve session", err)
			return
		}
		if !user.Role.AtLeast(min) {
			writeError(w, r, a.logger, "Authorize", &domain.AuthorizationError{Required: min, Actual: user.Role})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, user)))
	}
}

// Optional attaches the user when a valid session exists and passes anonymous requests through.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := a.token(r); token != "" {
			if user, err := a.auth.Resolve(r.Context(), token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxKeyUser, user))
			}
		}
		next(w, r)
	}
}
