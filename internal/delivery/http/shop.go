package http

import (
	"net/http"

	"github.com/kareempogba0/B-Laban/internal/service"
)

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.SignInRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.svc.Auth.SignIn(r.Context(), sess, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Auth.SignOut(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.User.State())
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	products, err := h.svc.Catalog.Products(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := h.svc.Cart.Details(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := cartItemRequest{Quantity: 1}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.AddItem(r.Context(), sess, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.UpdateQuantity(r.Context(), sess, r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.RemoveItem(r.Context(), sess, r.PathValue("productId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.Clear(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.ApplyCoupon(r.Context(), sess, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.svc.Cart.RemoveCoupon(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Wishlist.Items(sess))
}

func (h *Handler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.svc.Catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.Wishlist.Add(r.Context(), sess, product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleInWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inWishlist": h.svc.Wishlist.IsInWishlist(sess, r.PathValue("productId"))})
}

func (h *Handler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Wishlist.Remove(r.Context(), sess, r.PathValue("productId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Wishlist.Clear(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.CheckoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.svc.Checkout.PlaceOrder(r.Context(), sess, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
