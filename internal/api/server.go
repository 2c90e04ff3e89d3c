package api

import (
	"net/http"
	"time"

	"fjacquet/statement-scanner/internal/logging"
)

// Routes registers the endpoints on a new mux.
func Routes(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/state", h.State)

	// Statement lifecycle
	mux.HandleFunc("POST /api/statement", h.Upload)
	mux.HandleFunc("POST /api/reset", h.Reset)
	mux.HandleFunc("POST /api/retry", h.Retry)

	// Transactions
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("PUT /api/transactions/{id}/category", h.SetTransactionCategory)
	mux.HandleFunc("GET /api/summary", h.Summary)
	mux.HandleFunc("GET /api/export", h.Export)

	// Rules
	mux.HandleFunc("GET /api/rules", h.ListRules)
	mux.HandleFunc("POST /api/rules", h.CreateRule)
	mux.HandleFunc("PUT /api/rules/{id}", h.UpdateRule)
	mux.HandleFunc("DELETE /api/rules/{id}", h.DeleteRule)
	mux.HandleFunc("POST /api/rules/{id}/move", h.MoveRule)

	// Categories
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{name}/color", h.SetCategoryColor)
	mux.HandleFunc("GET /api/palette", h.Palette)

	return mux
}

// NewServer wraps the routes in the middleware chain.
//
// WriteTimeout is left unset: an upload is answered only after the
// extraction finishes, which can take as long as the AI timeout.
func NewServer(addr string, h *Handler, log logging.Logger) *http.Server {
	handler := Recovery(log)(
		Logger(log)(
			RequestID(
				CORS(Routes(h)),
			),
		),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
