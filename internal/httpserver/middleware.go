package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domain "dashboard/backend/internal/domain/auth"
	authusecase "dashboard/backend/internal/usecase/auth"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKeySession struct{}

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", recorder.size,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// withRecover is the generic error boundary: panics are logged and answered with a 500.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.log.Error(r.Context(), "panic recovered",
				"panic", rec,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, "Something went wrong.")
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS echoes explicitly listed origins with credentials. A "*" entry
// allows any origin without credentials, so the session cookie never rides
// along on a wildcard match.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				switch {
				case isOriginListed(origin, allowedOrigins):
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Add("Vary", "Origin")
				case isOriginListed("*", allowedOrigins):
					w.Header().Set("Access-Control-Allow-Origin", "*")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isOriginListed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

// withSession decodes the session cookie. Missing, forged or expired tokens
// leave the request anonymous; a stale cookie is cleared.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := domain.Anonymous
		if cookie, err := r.Cookie(s.cfg.CookieName); err == nil && cookie.Value != "" {
			session = s.sessions.Read(cookie.Value)
			if !session.Authenticated {
				s.clearSessionCookie(w)
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeySession{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withGate runs route authorization before any page logic. It judges the
// same path chi dispatches on; paths with dot segments are rejected since
// cleaning them would let the gate and the router disagree.
func (s *Server) withGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := routingPath(r)
		if !isCanonicalPath(p) {
			writeError(w, http.StatusBadRequest, "invalid request path")
			return
		}
		if s.gate.Bypassed(p) {
			next.ServeHTTP(w, r)
			return
		}

		session := sessionFromContext(r.Context())
		decision := s.gate.Authorize(authusecase.Request{
			IsAuthenticated: session.Authenticated,
			Path:            p,
		})
		switch decision.Kind {
		case authusecase.Allow:
			next.ServeHTTP(w, r)
		case authusecase.Deny:
			redirect(w, r, s.cfg.SignInPath+"?"+url.Values{"callbackUrl": {r.URL.RequestURI()}}.Encode())
		case authusecase.Redirect:
			redirect(w, r, decision.Target)
		default:
			writeError(w, http.StatusForbidden, "forbidden")
		}
	})
}

// routingPath mirrors chi's choice: the escaped path when it differs from
// the decoded one.
func routingPath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

func isCanonicalPath(p string) bool {
	clean := authusecase.CleanPath(p)
	return p == clean || p == clean+"/"
}

func sessionFromContext(ctx context.Context) domain.Session {
	session, ok := ctx.Value(ctxKeySession{}).(domain.Session)
	if !ok {
		return domain.Anonymous
	}
	return session
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
