package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type WishlistHandler struct {
	addUC    usecases_port.AddToWishlistUseCasePort
	getUC    usecases_port.GetWishlistUseCasePort
	removeUC usecases_port.RemoveFromWishlistUseCasePort
}

func NewWishlistHandler(addUC usecases_port.AddToWishlistUseCasePort,
	getUC usecases_port.GetWishlistUseCasePort,
	removeUC usecases_port.RemoveFromWishlistUseCasePort) *WishlistHandler {
	return &WishlistHandler{addUC: addUC, getUC: getUC, removeUC: removeUC}
}

// AddItem обрабатывает POST /wishlist
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddWishlistItem"})

	var req WishlistRequest
	if err := decodeBody(r, contracts.AddWishlistItemRequest, &req); err != nil {
		logger.Warn("Invalid wishlist body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Missing userEmail or propertyId")
		return
	}

	if err := h.addUC.Execute(r.Context(), req.UserEmail, req.PropertyID); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Added to wishlist"})
}

// GetWishlist обрабатывает GET /wishlist/{email}
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetWishlist"})

	email := chi.URLParam(r, "email")
	if email == "" {
		WriteJSONError(w, http.StatusBadRequest, "Missing user email")
		return
	}

	properties, err := h.getUC.Execute(r.Context(), email)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponses(properties))
}

// RemoveItem обрабатывает DELETE /wishlist/{email}/{propertyId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RemoveWishlistItem"})

	if err := h.removeUC.Execute(r.Context(), chi.URLParam(r, "email"), chi.URLParam(r, "propertyId")); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Removed from wishlist"})
}
