package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/service"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// SessionHeader carries the id returned by POST /api/sessions.
const SessionHeader = "X-Session-ID"

// Services groups what the handlers call into.
type Services struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Auth     *service.AuthService
	Reviews  *service.ReviewService
	Checkout *service.CheckoutService
	Profiles *service.ProfileService
}

// Handler handles HTTP requests for the application.
type Handler struct {
	sessions *state.Registry
	svc      Services
}

func NewHandler(sessions *state.Registry, svc Services) *Handler {
	return &Handler{sessions: sessions, svc: svc}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/current", h.handleCloseSession)

	mux.HandleFunc("POST /api/auth/signin", h.handleSignIn)
	mux.HandleFunc("POST /api/auth/signout", h.handleSignOut)
	mux.HandleFunc("GET /api/me", h.handleMe)

	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{productId}", h.handleUpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", h.handleRemoveCartItem)
	mux.HandleFunc("PUT /api/cart/coupon", h.handleApplyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", h.handleRemoveCoupon)

	mux.HandleFunc("GET /api/wishlist", h.handleGetWishlist)
	mux.HandleFunc("POST /api/wishlist", h.handleAddToWishlist)
	mux.HandleFunc("DELETE /api/wishlist", h.handleClearWishlist)
	mux.HandleFunc("GET /api/wishlist/{productId}", h.handleInWishlist)
	mux.HandleFunc("DELETE /api/wishlist/{productId}", h.handleRemoveFromWishlist)

	mux.HandleFunc("GET /api/products/{id}/reviews", h.handleProductReviews)
	mux.HandleFunc("GET /api/products/{id}/review-eligibility", h.handleReviewEligibility)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.handleSubmitReview)
	mux.HandleFunc("GET /api/me/reviews", h.handleMyReviews)
	mux.HandleFunc("PUT /api/me/reviews/{id}", h.handleUpdateReview)
	mux.HandleFunc("DELETE /api/me/reviews/{id}", h.handleDeleteReview)
	mux.HandleFunc("GET /api/me/reviewable-products", h.handleReviewableProducts)

	mux.HandleFunc("POST /api/orders", h.handlePlaceOrder)
	mux.HandleFunc("GET /api/me/orders", h.handleMyOrders)

	mux.HandleFunc("GET /api/me/profile", h.handleGetProfile)
	mux.HandleFunc("PUT /api/me/profile", h.handleUpdateProfile)
	mux.HandleFunc("POST /api/me/payment-methods", h.handleAddPaymentMethod)
	mux.HandleFunc("DELETE /api/me/payment-methods/{index}", h.handleRemovePaymentMethod)
}

var errNoSession = apperr.Invalid(SessionHeader, "Missing session. Please reload the page.")

// session resolves the request's session.
func (h *Handler) session(r *http.Request) (*state.Session, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		return nil, errNoSession
	}
	return h.sessions.Get(r.Context(), id)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sess.ID})
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		writeError(w, r, errNoSession)
		return
	}
	if err := h.sessions.Close(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalid("", "Invalid request body.")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Partial bool   `json:"partial,omitempty"`
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNotEligible), errors.Is(err, apperr.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrIndexRequired):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		slog.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:   apperr.UserMessage(err),
		Partial: errors.Is(err, apperr.ErrPartialWrite),
	})
}

// EnableCORS is a middleware to allow the browser client to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
