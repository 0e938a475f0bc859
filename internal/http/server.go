// Package http exposes the JSON API over a session-authenticated mux.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"rentledger/internal/services"
)

type Server struct {
	http.Server

	store       services.Store
	payments    *services.PaymentService
	reports     *services.ReportService
	receipts    *services.ReceiptService
	sessions    *sessionManager
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer wires the routes. All /api/* routes except login sit behind the
// session check.
func NewServer(addr, sessionSecret string, store services.Store, payments *services.PaymentService, reports *services.ReportService, receipts *services.ReceiptService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:       store,
		payments:    payments,
		reports:     reports,
		receipts:    receipts,
		sessions:    newSessionManager(sessionSecret),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/login", s.with(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.with(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.with(s.handleMe))

	mux.HandleFunc("GET /api/users", s.withAuth(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.withAuth(s.handleCreateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.withAuth(s.handleDeleteUser))

	mux.HandleFunc("GET /api/settings", s.withAuth(s.handleGetSettings))
	mux.HandleFunc("POST /api/settings", s.withAuth(s.handleSaveSettings))

	mux.HandleFunc("GET /api/properties", s.withAuth(s.handleListProperties))
	mux.HandleFunc("POST /api/properties", s.withAuth(s.handleCreateProperty))
	mux.HandleFunc("PUT /api/properties/{id}", s.withAuth(s.handleUpdateProperty))
	mux.HandleFunc("DELETE /api/properties/{id}", s.withAuth(s.handleDeleteProperty))

	mux.HandleFunc("GET /api/payments", s.withAuth(s.handleListPayments))
	mux.HandleFunc("POST /api/payments", s.withAuth(s.handleRecordPayment))

	mux.HandleFunc("GET /api/expenses", s.withAuth(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withAuth(s.handleAddExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAuth(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/dashboard", s.withAuth(s.handleDashboard))

	mux.HandleFunc("GET /api/leases", s.withAuth(s.handleListLeases))
	mux.HandleFunc("POST /api/leases", s.withAuth(s.handleCreateLease))
	mux.HandleFunc("GET /api/leases/alerts", s.withAuth(s.handleLeaseAlerts))

	mux.HandleFunc("GET /api/taxreport", s.withAuth(s.handleTaxReport))

	mux.HandleFunc("POST /api/email-receipt", s.withAuth(s.handleEmailReceipt))
	mux.HandleFunc("GET /api/email-log", s.withAuth(s.handleEmailLog))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// with adds security headers, the request ID, request logging and POST rate
// limiting. Auth routes layer withAuth on top.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.with(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.userFromRequest(r)
		if err != nil {
			writeJSONStatus(w, http.StatusUnauthorized, failMsg("Not logged in."))
			return
		}
		next(w, r.WithContext(withSessionUser(r.Context(), user)))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
