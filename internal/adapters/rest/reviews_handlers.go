package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	createUC usecases_port.CreateReviewUseCasePort
	listUC   usecases_port.ListReviewsUseCasePort
	statusUC usecases_port.ChangeReviewStatusUseCasePort
	deleteUC usecases_port.DeleteReviewUseCasePort
}

func NewReviewHandler(createUC usecases_port.CreateReviewUseCasePort,
	listUC usecases_port.ListReviewsUseCasePort,
	statusUC usecases_port.ChangeReviewStatusUseCasePort,
	deleteUC usecases_port.DeleteReviewUseCasePort) *ReviewHandler {
	return &ReviewHandler{createUC: createUC, listUC: listUC, statusUC: statusUC, deleteUC: deleteUC}
}

// CreateReview обрабатывает POST /reviews/{id}, где id - идентификатор объекта.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateReview"})

	var req ReviewRequest
	if err := decodeBody(r, contracts.CreateReviewRequest, &req); err != nil {
		logger.Warn("Invalid review body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	review, err := h.createUC.Execute(r.Context(), domain.Review{
		PropertyID: chi.URLParam(r, "id"),
		UserID:     req.UserID,
		Name:       req.Name,
		Text:       req.Text,
	})
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, CreateReviewResponse{
		Message: "Review added successfully",
		Review:  toReviewResponse(*review),
	})
}

// ListReviews обрабатывает GET /reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListUserReviews обрабатывает GET /reviews/{id}, где id - email автора.
func (h *ReviewHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *ReviewHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListReviews"})

	reviews, err := h.listUC.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		response = append(response, toReviewResponse(rv))
	}
	RespondWithJSON(w, http.StatusOK, response)
}

// ChangeStatus обрабатывает PATCH /reviews/{id}/status
func (h *ReviewHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangeReviewStatus"})

	var req ReviewStatusRequest
	if err := decodeBody(r, "", &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	if err := h.statusUC.Execute(r.Context(), chi.URLParam(r, "id"), domain.ReviewStatus(req.Status)); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Review status updated"})
}

// DeleteReview обрабатывает DELETE /reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteReview"})

	if err := h.deleteUC.Execute(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Review deleted successfully"})
}
