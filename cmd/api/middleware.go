package main

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/models"
	"github.com/safar/go-shop-api/internal/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errMissingToken = errors.New("no token, authorization denied")

// authenticate resolves the Bearer token into a caller identity. The token is
// only honored if the user row still exists.
func (s *server) authenticate(r *http.Request) (models.Caller, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return models.Caller{}, errMissingToken
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return models.Caller{}, errMissingToken
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return models.Caller{}, err
	}

	exists, err := store.UserExists(r.Context(), s.db, claims.UserID)
	if err != nil {
		return models.Caller{}, err
	}
	if !exists {
		return models.Caller{}, database.ErrForbidden
	}

	return claims.Caller(), nil
}

// authenticateAdmin is authenticate plus the privilege gate used by
// product-management and order-approval routes.
func (s *server) authenticateAdmin(r *http.Request) (models.Caller, error) {
	caller, err := s.authenticate(r)
	if err != nil {
		return models.Caller{}, err
	}
	if !caller.CanApprove() {
		return models.Caller{}, database.ErrForbidden
	}
	return caller, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		handler := r.URL.Path
		s.metrics.Requests.WithLabelValues(handler, strconv.Itoa(rec.status)).Inc()
		s.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func (s *server) withRateLimit(next http.Handler) http.Handler {
	limiter := newIPLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !limiter.allow(ip) {
			s.respondError(w, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
