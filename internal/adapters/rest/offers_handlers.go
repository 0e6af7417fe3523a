package rest

import (
	"dreamsquare-service/internal/adapters/notifier"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// sseKeepAlive - период комментариев, которые держат SSE-соединение открытым.
var sseKeepAlive = 15 * time.Second

// OfferEventsSubscriber - подписка на события предложений по email пользователя.
type OfferEventsSubscriber interface {
	AddClient(email string) notifier.ClientChannel
	RemoveClient(email string, ch notifier.ClientChannel)
}

type OfferHandler struct {
	submitUC     usecases_port.SubmitOfferUseCasePort
	acceptUC     usecases_port.AcceptOfferUseCasePort
	rejectUC     usecases_port.RejectOfferUseCasePort
	markBoughtUC usecases_port.MarkOfferBoughtUseCasePort
	buyerUC      usecases_port.ListBuyerOffersUseCasePort
	agentUC      usecases_port.ListAgentOffersUseCasePort
	getUC        usecases_port.GetOfferUseCasePort
	subscriber   OfferEventsSubscriber
}

// OfferUseCases - набор use case для NewOfferHandler.
type OfferUseCases struct {
	Submit     usecases_port.SubmitOfferUseCasePort
	Accept     usecases_port.AcceptOfferUseCasePort
	Reject     usecases_port.RejectOfferUseCasePort
	MarkBought usecases_port.MarkOfferBoughtUseCasePort
	ListBuyer  usecases_port.ListBuyerOffersUseCasePort
	ListAgent  usecases_port.ListAgentOffersUseCasePort
	Get        usecases_port.GetOfferUseCasePort
}

func NewOfferHandler(uc OfferUseCases, subscriber OfferEventsSubscriber) *OfferHandler {
	return &OfferHandler{
		submitUC:     uc.Submit,
		acceptUC:     uc.Accept,
		rejectUC:     uc.Reject,
		markBoughtUC: uc.MarkBought,
		buyerUC:      uc.ListBuyer,
		agentUC:      uc.ListAgent,
		getUC:        uc.Get,
		subscriber:   subscriber,
	}
}

// SubmitOffer обрабатывает POST /offers
func (h *OfferHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubmitOffer"})

	var req CreateOfferRequest
	if err := decodeBody(r, contracts.CreateOfferRequest, &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	// Нечисловая сумма считается отсутствующей
	amount, err := strconv.ParseFloat(numericString(req.OfferAmount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	offer, err := h.submitUC.Execute(r.Context(), domain.OfferSubmission{
		PropertyID:  req.PropertyID,
		Title:       req.Title,
		Location:    req.Location,
		AgentName:   req.AgentName,
		OfferAmount: amount,
		BuyerEmail:  req.BuyerEmail,
		BuyerName:   req.BuyerName,
		BuyingDate:  req.BuyingDate,
	})
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, SubmitOfferResponse{
		Message: "Offer submitted successfully",
		Offer:   toOfferResponse(*offer),
	})
}

// ListBuyerOffers обрабатывает GET /offers?buyerEmail=
func (h *OfferHandler) ListBuyerOffers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListBuyerOffers"})

	offers, err := h.buyerUC.Execute(r.Context(), r.URL.Query().Get("buyerEmail"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOfferResponses(offers))
}

// ListAgentOffers обрабатывает GET /offers/agent/{email}
func (h *OfferHandler) ListAgentOffers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListAgentOffers"})

	offers, err := h.agentUC.Execute(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOfferResponses(offers))
}

// GetOffer обрабатывает GET /offers/{id}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetOffer"})

	offer, err := h.getUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOfferResponse(*offer))
}

// AcceptOffer обрабатывает PATCH /offers/{id}/accept
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AcceptOffer"})

	plan, err := h.acceptUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	rejected := plan.RejectOfferIDs
	if rejected == nil {
		rejected = []string{}
	}
	RespondWithJSON(w, http.StatusOK, AcceptOfferResponse{
		Message:          "Offer accepted and others rejected",
		RejectedOfferIDs: rejected,
	})
}

// RejectOffer обрабатывает PATCH /offers/{id}/reject
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RejectOffer"})

	if err := h.rejectUC.Execute(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Offer rejected"})
}

// MarkBought обрабатывает PATCH /project-status/{id}
func (h *OfferHandler) MarkBought(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "MarkOfferBought"})

	var req MarkBoughtRequest
	if err := decodeBody(r, "", &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	if err := h.markBoughtUC.Execute(r.Context(), chi.URLParam(r, "id"), req.TransactionID); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MarkBoughtResponse{Success: true, Message: "Project marked as bought"})
}

// SubscribeToOffers обрабатывает GET /offers/stream
func (h *OfferHandler) SubscribeToOffers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToOffers"})

	principal, ok := contextkeys.PrincipalFromContext(r.Context())
	if !ok || principal.Email == "" {
		logger.Error("Principal for SSE subscription is missing", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "unauthorized access")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"email": principal.Email})
	handlerLogger.Info("New client subscribing to SSE events", nil)

	// Поток живет дольше WriteTimeout сервера
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.subscriber.AddClient(principal.Email)
	defer h.subscriber.RemoveClient(principal.Email, clientChan)

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flush(w)

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := w.Write(data); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flush(w)
			handlerLogger.Debug("Sent SSE event to client", nil)

		case <-ticker.C:
			// Строки с двоеточия - комментарии SSE, клиентский onmessage их не видит
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flush(w)

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
