package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"TaskWheelService/response"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type ctxKey int

const ownerKey ctxKey = iota

// Authenticator resolves a bearer token to the id of the caller.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// OwnerFromContext returns the authenticated caller stored by RequireAuth.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey).(string)
	return owner, ok && owner != ""
}

// WithOwner returns a copy of ctx carrying the caller id.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// RequireAuth checks the "Authorization: Bearer <token>" header and stores the
// caller id in the request context. Requests without a valid token get 401.
func RequireAuth(auth Authenticator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				log.WithFields(logrus.Fields{
					"task operation": "authorizing user",
					"request":        req.Method + " " + req.URL.Path,
				}).Warn("missing authorization header")
				_ = response.Write(res, http.StatusUnauthorized, response.Failed("Access denied. No token provided."))
				return
			}

			owner, err := auth.Authenticate(strings.TrimSpace(token))
			if err != nil {
				log.WithFields(logrus.Fields{
					"task operation": "authorizing user",
					"request":        req.Method + " " + req.URL.Path,
				}).Warn(err.Error())
				_ = response.Write(res, http.StatusUnauthorized, response.Failed("Invalid or expired token"))
				return
			}
			next.ServeHTTP(res, req.WithContext(WithOwner(req.Context(), owner)))
		})
	}
}

// RateLimiter rejects requests with 429 once the token bucket is empty.
func RateLimiter(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				_ = response.Write(res, http.StatusTooManyRequests, response.Failed("The API is at capacity, try again later."))
				return
			}
			next.ServeHTTP(res, req)
		})
	}
}

// RequestTimeout bounds the context of every request by d.
// Handlers see context.DeadlineExceeded from the layers below once it expires.
func RequestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			if d <= 0 {
				next.ServeHTTP(res, req)
				return
			}
			ctx, cancel := context.WithTimeout(req.Context(), d)
			defer cancel()
			next.ServeHTTP(res, req.WithContext(ctx))
		})
	}
}

// RequestLogger writes one structured entry per served request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(res, req.ProtoMajor)
			next.ServeHTTP(ww, req)

			entry := log.WithFields(logrus.Fields{
				"request":    req.Method + " " + req.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": chiMiddleware.GetReqID(req.Context()),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Error("request served")
				return
			}
			entry.Info("request served")
		})
	}
}
