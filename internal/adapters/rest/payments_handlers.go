package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	intentUC usecases_port.CreatePaymentIntentUseCasePort
	recordUC usecases_port.RecordPaymentUseCasePort
	agentUC  usecases_port.ListAgentPaymentsUseCasePort
}

func NewPaymentHandler(intentUC usecases_port.CreatePaymentIntentUseCasePort,
	recordUC usecases_port.RecordPaymentUseCasePort,
	agentUC usecases_port.ListAgentPaymentsUseCasePort) *PaymentHandler {
	return &PaymentHandler{intentUC: intentUC, recordUC: recordUC, agentUC: agentUC}
}

// CreatePaymentIntent обрабатывает POST /create-payment-intent.
// amount - в минорных единицах валюты.
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreatePaymentIntent"})

	var req PaymentIntentRequest
	if err := decodeBody(r, contracts.PaymentIntentRequest, &req); err != nil || req.Amount == nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid payment amount")
		return
	}
	if math.IsNaN(*req.Amount) || *req.Amount < domain.MinPaymentIntentAmount || *req.Amount > math.MaxInt64 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid payment amount")
		return
	}

	intent, err := h.intentUC.Execute(r.Context(), int64(math.Round(*req.Amount)))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}

// RecordPayment обрабатывает POST /payments
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RecordPayment"})

	var req RecordPaymentRequest
	if err := decodeBody(r, contracts.RecordPaymentRequest, &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	id, err := h.recordUC.Execute(r.Context(), domain.PaymentRecord{
		OfferID:       req.OfferID,
		PropertyID:    req.PropertyID,
		Email:         req.Email,
		Amount:        numericString(req.Amount),
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, InsertedResponse{InsertedID: id})
}

// ListAgentPayments обрабатывает GET /payments/agent/{email}
func (h *PaymentHandler) ListAgentPayments(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListAgentPayments"})

	payments, err := h.agentUC.Execute(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}
	RespondWithJSON(w, http.StatusOK, response)
}
