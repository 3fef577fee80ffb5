package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"turfdesk/internal/models"
	"turfdesk/internal/service"

	"github.com/julienschmidt/httprouter"
)

const (
	maxBodyBytes       = 1 << 20
	healthCheckTimeout = 2 * time.Second
)

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range s.svc.Checks {
		if err := check(ctx); err != nil {
			s.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	profile, err := s.svc.Account.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	profile.Token = ""
	writeJSON(w, http.StatusOK, profile)
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Name     string `json:"name"`
		TurfName string `json:"turf_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	profile, err := s.svc.Account.Register(r.Context(), &models.Registration{
		Name:     body.Name,
		TurfName: body.TurfName,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	profile.Token = ""
	writeJSON(w, http.StatusCreated, profile)
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile models.Profile
	if !decodeBody(w, r, &profile) {
		return
	}
	updated, err := s.svc.Account.UpdateProfile(r.Context(), &profile)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := s.svc.Desk.Dashboard(r.Context(), strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleListSpaces(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	spaces, err := s.svc.Spaces.List(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spaces": spaces})
}

func (s *HTTPServer) handleGetSpace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	space, err := s.svc.Spaces.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, space)
}

func (s *HTTPServer) handleCreateSpace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var space models.Space
	if !decodeBody(w, r, &space) {
		return
	}
	space.ID = ""
	created, err := s.svc.Spaces.Create(r.Context(), &space)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleUpdateSpace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var space models.Space
	if !decodeBody(w, r, &space) {
		return
	}
	space.ID = ps.ByName("id")
	updated, err := s.svc.Spaces.Update(r.Context(), &space)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDeleteSpace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.svc.Spaces.Delete(r.Context(), ps.ByName("id")); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBoard: ?date=YYYY-MM-DD&session=...&selected=slot,slot
func (s *HTTPServer) handleBoard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	view, err := s.svc.Desk.SlotBoard(r.Context(), q.Get("session"), ps.ByName("id"), strings.TrimSpace(q.Get("date")), splitCSV(q.Get("selected")))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleGetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := s.svc.Desk.GetCart(r.Context(), ps.ByName("session"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleClearCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.svc.Desk.ClearCart(r.Context(), ps.ByName("session")); err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleAddToCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.AddToCartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.svc.Desk.AddToCart(r.Context(), ps.ByName("session"), req)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleRemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := s.svc.Desk.RemoveFromCart(r.Context(), ps.ByName("session"), ps.ByName("item"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleCheckout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.Desk.Checkout(r.Context(), ps.ByName("session"), req, nil)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) handleQuickBill(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.QuickBillRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.Desk.QuickBill(r.Context(), req, nil)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleListBookings lists by ?date= or, with ?q=, searches by customer name
// or mobile.
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	var (
		bookings []models.Booking
		err      error
	)
	if query, ok := q["q"]; ok {
		bookings, err = s.svc.Desk.SearchBookings(r.Context(), strings.Join(query, " "))
	} else {
		bookings, err = s.svc.Desk.ListBookings(r.Context(), strings.TrimSpace(q.Get("date")))
	}
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.svc.Desk.GetBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleSettle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Amount      float64 `json:"amount"`
		PaymentMode string  `json:"payment_mode"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	booking, err := s.svc.Desk.Settle(r.Context(), ps.ByName("id"), body.Amount, body.PaymentMode)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.svc.Desk.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	data, name, err := s.svc.Reports.Invoice(r.Context(), ps.ByName("id"), r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeFile(w, "application/pdf", name, data)
}

func (s *HTTPServer) handleShare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	link, err := s.svc.Reports.ShareLink(r.Context(), ps.ByName("id"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (s *HTTPServer) handleListExpenses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	expenses, err := s.svc.Expenses.List(r.Context())
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *HTTPServer) handleCreateExpense(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var expense models.Expense
	if !decodeBody(w, r, &expense) {
		return
	}
	created, err := s.svc.Expenses.Create(r.Context(), &expense)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	stats, err := s.svc.Reports.Stats(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

var exportContentTypes = map[string]string{
	service.ReportPDF:  "application/pdf",
	service.ReportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = service.ReportPDF
	}
	data, name, err := s.svc.Reports.Export(r.Context(), q.Get("start"), q.Get("end"), format)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	writeFile(w, exportContentTypes[format], name, data)
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
