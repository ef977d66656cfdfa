package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/service"
	"github.com/kareempogba0/B-Laban/internal/state"
)

const maxPictureSize = 5 << 20

// user resolves the session and its signed-in user.
func (h *Handler) user(r *http.Request) (*state.Session, entity.AuthUser, error) {
	sess, err := h.session(r)
	if err != nil {
		return nil, entity.AuthUser{}, err
	}
	user, err := sess.CurrentUser()
	if err != nil {
		return nil, entity.AuthUser{}, err
	}
	return sess, user, nil
}

func (h *Handler) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews.ListByProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handleReviewEligibility(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	eligibility, err := h.svc.Reviews.CheckEligibility(r.Context(), user.UID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]entity.Eligibility{"eligibility": eligibility})
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in entity.ReviewInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.svc.Reviews.Submit(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleMyReviews(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.svc.Reviews.ListByUser(r.Context(), user.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in entity.ReviewInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.svc.Reviews.Update(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Reviews.Delete(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReviewableProducts(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	products, err := h.svc.Reviews.ReviewableProducts(r.Context(), user.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := h.svc.Checkout.History(r.Context(), user.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.svc.Profiles.Profile(r.Context(), user.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleUpdateProfile accepts either a JSON body or a multipart form whose
// "profile" field holds the JSON and whose "picture" file is the new image.
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req service.ProfileUpdateRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxPictureSize); err != nil {
			writeError(w, r, apperr.Invalid("picture", "The picture is too large."))
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("profile")), &req); err != nil {
			writeError(w, r, apperr.Invalid("profile", "Invalid profile data."))
			return
		}
		file, header, err := r.FormFile("picture")
		switch {
		case err == nil:
			defer file.Close()
			req.Picture = &service.Picture{Filename: header.Filename, Content: file}
		case !errors.Is(err, http.ErrMissingFile):
			writeError(w, r, apperr.Invalid("picture", "Invalid picture."))
			return
		}
	} else if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.svc.Profiles.UpdateProfile(r.Context(), sess, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleAddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in entity.PaymentMethodInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	methods, err := h.svc.Profiles.AddPaymentMethod(r.Context(), user.UID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, methods)
}

func (h *Handler) handleRemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.user(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, apperr.Invalid("index", "No such payment method."))
		return
	}
	methods, err := h.svc.Profiles.RemovePaymentMethod(r.Context(), user.UID, index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}
