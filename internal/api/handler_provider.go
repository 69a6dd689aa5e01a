package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/fastprodman/campushub/internal/models"
	"github.com/fastprodman/campushub/internal/repos/catalog"
	"github.com/fastprodman/campushub/internal/repos/fines"
	"github.com/fastprodman/campushub/internal/repos/ledger"
	"github.com/fastprodman/campushub/internal/repos/orders"
	"github.com/fastprodman/campushub/internal/services/ordering"
	"github.com/fastprodman/campushub/internal/services/payments"
	"github.com/fastprodman/campushub/internal/services/query"
	"github.com/fastprodman/campushub/internal/services/studyguide"
	"github.com/fastprodman/campushub/pkg/money"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Services are the engines the HTTP layer drives.
type Services struct {
	Orders     *ordering.Engine
	Payments   *payments.Service
	Query      *query.Facade
	StudyGuide studyguide.Generator
	Notifier   *Notifier
}

// HandlerProvider exposes Services as HTTP handlers.
type HandlerProvider struct {
	svc Services
}

func NewHandler(svc Services) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{ordering.ErrEmptyCart, http.StatusBadRequest},
	{ledger.ErrInvalidAmount, http.StatusBadRequest},
	{studyguide.ErrEmptyText, http.StatusBadRequest},
	{ordering.ErrInvalidQuantity, http.StatusBadRequest},
	{ordering.ErrTotalTooLarge, http.StatusBadRequest},
	{catalog.ErrUserNotFound, http.StatusNotFound},
	{catalog.ErrItemNotFound, http.StatusNotFound},
	{catalog.ErrBookNotFound, http.StatusNotFound},
	{ledger.ErrWalletNotFound, http.StatusNotFound},
	{fines.ErrFineNotFound, http.StatusNotFound},
	{orders.ErrOrderNotFound, http.StatusNotFound},
	{ledger.ErrInsufficientFunds, http.StatusConflict},
	{fines.ErrFineAlreadyPaid, http.StatusConflict},
	{ordering.ErrInvalidTransition, http.StatusConflict},
	{studyguide.ErrExternalService, http.StatusBadGateway},
}

// writeDomainError maps a service error onto a status code and the sentinel's
// message. Anything unknown is logged and reported as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.err.Error())
			return
		}
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeBody reads a single JSON object, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	//nolint:errcheck
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")

		return false
	}

	return true
}

type ctxKey struct{}

// requireUser resolves {userId} against the catalog and stores it in the
// request context.
func (h *HandlerProvider) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(chi.URLParam(r, "userId"))
		if userID == "" {
			writeError(w, http.StatusBadRequest, "missing userId")
			return
		}

		u, err := h.svc.Query.Profile(r.Context(), userID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func userFrom(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

// --- Handlers ---

// GetProfileHandler handles GET /user/{userId}/profile
func (h *HandlerProvider) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

// GetDashboardHandler handles GET /user/{userId}/dashboard
func (h *HandlerProvider) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Query.Dashboard(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboard(d))
}

// GetWalletHandler handles GET /user/{userId}/wallet
func (h *HandlerProvider) GetWalletHandler(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.svc.Payments.Wallet(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWallet(wallet))
}

// TopUpHandler handles POST /user/{userId}/wallet/topup
func (h *HandlerProvider) TopUpHandler(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := money.ParseCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.svc.Payments.TopUp(r.Context(), userFrom(r).ID, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWallet(wallet))
}

// GetTransactionsHandler handles GET /user/{userId}/wallet/transactions
func (h *HandlerProvider) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.Payments.TransactionHistory(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactions(hist))
}

// GetFinesHandler handles GET /user/{userId}/fines
func (h *HandlerProvider) GetFinesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Query.FinesForUser(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFines(list))
}

// PayFineHandler handles POST /user/{userId}/fines/{fineId}/pay
func (h *HandlerProvider) PayFineHandler(w http.ResponseWriter, r *http.Request) {
	fine, err := h.svc.Payments.PayFine(r.Context(), userFrom(r).ID, chi.URLParam(r, "fineId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFine(fine))
}

// GetOrdersHandler handles GET /user/{userId}/orders
func (h *HandlerProvider) GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Orders.ListOrders(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrders(list))
}

// PlaceOrderHandler handles POST /user/{userId}/orders
func (h *HandlerProvider) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var cart ordering.Cart

	for _, line := range req.Items {
		if line.Quantity < 1 || line.Quantity > ordering.MaxLineQuantity {
			writeDomainError(w, r, ordering.ErrInvalidQuantity)
			return
		}

		cart = ordering.AddToCart(cart, models.CanteenItem{ID: line.ItemID})
		cart = ordering.UpdateQuantity(cart, line.ItemID, line.Quantity-1)
	}

	order, err := h.svc.Orders.PlaceOrder(r.Context(), userFrom(r).ID, cart)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrder(order))
}

// OrderUpdatesHandler handles GET /user/{userId}/orders/ws
func (h *HandlerProvider) OrderUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	h.svc.Notifier.Serve(w, r, userFrom(r).ID)
}

// CompleteOrderHandler handles POST /orders/{orderId}/complete
func (h *HandlerProvider) CompleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.CompleteOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrder(order))
}

// CancelOrderHandler handles POST /orders/{orderId}/cancel
func (h *HandlerProvider) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.CancelOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrder(order))
}

// GetIssuedBooksHandler handles GET /user/{userId}/books
func (h *HandlerProvider) GetIssuedBooksHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Query.IssuedBooksWithDetails(r.Context(), userFrom(r).ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toIssuedBooks(list))
}

// SearchBooksHandler handles GET /books?q=
func (h *HandlerProvider) SearchBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Query.SearchBooks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// GetMenuHandler handles GET /menu
func (h *HandlerProvider) GetMenuHandler(w http.ResponseWriter, r *http.Request) {
	menu, err := h.svc.Query.Menu(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMenu(menu))
}

// GetResourcesHandler handles GET /resources
func (h *HandlerProvider) GetResourcesHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Query.AcademicResources(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetAdminStatsHandler handles GET /admin/stats
func (h *HandlerProvider) GetAdminStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.svc.Query.AdminStats(ctx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sales, err := h.svc.Query.CanteenSalesByCategory(ctx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	activity, err := h.svc.Query.LibraryActivity(ctx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAdminStats(stats, sales, activity))
}

// StudyGuideHandler handles POST /study-guide
func (h *HandlerProvider) StudyGuideHandler(w http.ResponseWriter, r *http.Request) {
	var req studyGuideRequest
	if !decodeBody(w, r, &req) {
		return
	}

	guide, err := h.svc.StudyGuide.Generate(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, guide)
}
