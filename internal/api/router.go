package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc Services) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/user/{userId}", func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/profile", h.GetProfileHandler)
		r.Get("/dashboard", h.GetDashboardHandler)

		r.Get("/wallet", h.GetWalletHandler)
		r.Post("/wallet/topup", h.TopUpHandler)
		r.Get("/wallet/transactions", h.GetTransactionsHandler)

		r.Get("/fines", h.GetFinesHandler)
		r.Post("/fines/{fineId}/pay", h.PayFineHandler)

		r.Get("/orders", h.GetOrdersHandler)
		r.Post("/orders", h.PlaceOrderHandler)
		r.Get("/orders/ws", h.OrderUpdatesHandler)

		r.Get("/books", h.GetIssuedBooksHandler)
	})

	r.Post("/orders/{orderId}/complete", h.CompleteOrderHandler)
	r.Post("/orders/{orderId}/cancel", h.CancelOrderHandler)

	r.Get("/books", h.SearchBooksHandler)
	r.Get("/menu", h.GetMenuHandler)
	r.Get("/resources", h.GetResourcesHandler)
	r.Get("/admin/stats", h.GetAdminStatsHandler)
	r.Post("/study-guide", h.StudyGuideHandler)

	return r
}
