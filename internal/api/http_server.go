package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"turfdesk/internal/config"
	"turfdesk/internal/metrics"
	"turfdesk/internal/service"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Services are the flows the HTTP API exposes.
type Services struct {
	Desk     *service.DeskService
	Spaces   *service.SpaceService
	Expenses *service.ExpenseService
	Reports  *service.ReportService
	Account  *service.AccountService

	// Checks are run by /healthz; any failure reports the API as degraded.
	Checks map[string]func(ctx context.Context) error
}

// HTTPServer is the JSON API the desk front end talks to.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	logger *zerolog.Logger
	server *http.Server
	auth   *HTTPAuth
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{cfg: cfg, svc: svc, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	router := httprouter.New()
	srv.routes(router)

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", srv.auth.header},
	}).Handler(srv.auth.Wrap(router))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           loggingMiddleware(logger, corsHandler),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

// Handler exposes the full middleware chain, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) routes(r *httprouter.Router) {
	s.handle(r, http.MethodGet, "/healthz", "healthz", s.handleHealth)

	const v1 = "/api/v1"
	s.handle(r, http.MethodPost, v1+"/login", "login", s.handleLogin)
	s.handle(r, http.MethodPost, v1+"/register", "register", s.handleRegister)
	s.handle(r, http.MethodPut, v1+"/profile", "profile.update", s.handleUpdateProfile)
	s.handle(r, http.MethodGet, v1+"/dashboard", "dashboard", s.handleDashboard)

	s.handle(r, http.MethodGet, v1+"/spaces", "spaces.list", s.handleListSpaces)
	s.handle(r, http.MethodPost, v1+"/spaces", "spaces.create", s.handleCreateSpace)
	s.handle(r, http.MethodGet, v1+"/spaces/:id", "spaces.get", s.handleGetSpace)
	s.handle(r, http.MethodPut, v1+"/spaces/:id", "spaces.update", s.handleUpdateSpace)
	s.handle(r, http.MethodDelete, v1+"/spaces/:id", "spaces.delete", s.handleDeleteSpace)
	s.handle(r, http.MethodGet, v1+"/spaces/:id/board", "board", s.handleBoard)

	s.handle(r, http.MethodGet, v1+"/sessions/:session/cart", "cart.get", s.handleGetCart)
	s.handle(r, http.MethodDelete, v1+"/sessions/:session/cart", "cart.clear", s.handleClearCart)
	s.handle(r, http.MethodPost, v1+"/sessions/:session/cart/items", "cart.add", s.handleAddToCart)
	s.handle(r, http.MethodDelete, v1+"/sessions/:session/cart/items/:item", "cart.remove", s.handleRemoveFromCart)
	s.handle(r, http.MethodPost, v1+"/sessions/:session/checkout", "checkout", s.handleCheckout)
	s.handle(r, http.MethodPost, v1+"/quick-bill", "quick_bill", s.handleQuickBill)

	s.handle(r, http.MethodGet, v1+"/bookings", "bookings.list", s.handleListBookings)
	s.handle(r, http.MethodGet, v1+"/bookings/:id", "bookings.get", s.handleGetBooking)
	s.handle(r, http.MethodPost, v1+"/bookings/:id/payments", "bookings.settle", s.handleSettle)
	s.handle(r, http.MethodPost, v1+"/bookings/:id/cancel", "bookings.cancel", s.handleCancel)
	s.handle(r, http.MethodGet, v1+"/bookings/:id/invoice", "bookings.invoice", s.handleInvoice)
	s.handle(r, http.MethodGet, v1+"/bookings/:id/share", "bookings.share", s.handleShare)

	s.handle(r, http.MethodGet, v1+"/expenses", "expenses.list", s.handleListExpenses)
	s.handle(r, http.MethodPost, v1+"/expenses", "expenses.create", s.handleCreateExpense)

	s.handle(r, http.MethodGet, v1+"/reports", "reports.stats", s.handleStats)
	s.handle(r, http.MethodGet, v1+"/reports/export", "reports.export", s.handleExport)

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.PanicHandler = func(w http.ResponseWriter, req *http.Request, v interface{}) {
		s.logger.Error().Interface("panic", v).Str("path", req.URL.Path).Msg("handler panic")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handle registers h and counts every hit under endpoint.
func (s *HTTPServer) handle(r *httprouter.Router, method, path, endpoint string, h httprouter.Handle) {
	r.Handle(method, path, func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		metrics.IncHTTP(endpoint)
		h(w, req, ps)
	})
}

const requestIDHeader = "X-Request-ID"

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	base := logger.With().Str("component", "http").Logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		base.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
