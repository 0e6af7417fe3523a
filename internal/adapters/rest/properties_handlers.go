package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type PropertyHandler struct {
	createUC         usecases_port.CreatePropertyUseCasePort
	listUC           usecases_port.ListPropertiesUseCasePort
	listAllUC        usecases_port.ListPropertiesUseCasePort
	listAdvertisedUC usecases_port.ListPropertiesUseCasePort
	getUC            usecases_port.GetPropertyUseCasePort
	updateUC         usecases_port.UpdatePropertyUseCasePort
	deleteUC         usecases_port.DeletePropertyUseCasePort
	statusUC         usecases_port.ChangePropertyStatusUseCasePort
	advertiseUC      usecases_port.SetPropertyAdvertisedUseCasePort
	addReviewUC      usecases_port.AddPropertyReviewUseCasePort
}

// PropertyUseCases - набор use case для NewPropertyHandler.
type PropertyUseCases struct {
	Create         usecases_port.CreatePropertyUseCasePort
	List           usecases_port.ListPropertiesUseCasePort
	ListAll        usecases_port.ListPropertiesUseCasePort
	ListAdvertised usecases_port.ListPropertiesUseCasePort
	Get            usecases_port.GetPropertyUseCasePort
	Update         usecases_port.UpdatePropertyUseCasePort
	Delete         usecases_port.DeletePropertyUseCasePort
	ChangeStatus   usecases_port.ChangePropertyStatusUseCasePort
	SetAdvertised  usecases_port.SetPropertyAdvertisedUseCasePort
	AddReview      usecases_port.AddPropertyReviewUseCasePort
}

func NewPropertyHandler(uc PropertyUseCases) *PropertyHandler {
	return &PropertyHandler{
		createUC:         uc.Create,
		listUC:           uc.List,
		listAllUC:        uc.ListAll,
		listAdvertisedUC: uc.ListAdvertised,
		getUC:            uc.Get,
		updateUC:         uc.Update,
		deleteUC:         uc.Delete,
		statusUC:         uc.ChangeStatus,
		advertiseUC:      uc.SetAdvertised,
		addReviewUC:      uc.AddReview,
	}
}

// CreateProperty обрабатывает POST /properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	var req PropertyRequest
	if err := decodeBody(r, contracts.CreatePropertyRequest, &req); err != nil {
		logger.Warn("Property data is required", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Property data is required")
		return
	}

	property := req.toDomain()
	// Без agentEmail в теле владельцем считается автор запроса
	if strings.TrimSpace(property.AgentEmail) == "" {
		if principal, ok := contextkeys.PrincipalFromContext(r.Context()); ok {
			property.AgentEmail = principal.Email
		}
	}

	id, err := h.createUC.Execute(r.Context(), property)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, InsertedResponse{InsertedID: id})
}

// ListProperties обрабатывает GET /properties?email=&geohash=
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.listUC, "ListProperties")
}

// ListAllProperties обрабатывает GET /admin/properties
func (h *PropertyHandler) ListAllProperties(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.listAllUC, "ListAllProperties")
}

// ListAdvertisedProperties обрабатывает GET /advertised-properties
func (h *PropertyHandler) ListAdvertisedProperties(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.listAdvertisedUC, "ListAdvertisedProperties")
}

func (h *PropertyHandler) list(w http.ResponseWriter, r *http.Request, uc usecases_port.ListPropertiesUseCasePort, name string) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})

	query := r.URL.Query()
	filter := domain.PropertyFilter{
		AgentEmail:    strings.TrimSpace(query.Get("email")),
		GeohashPrefix: strings.ToLower(strings.TrimSpace(query.Get("geohash"))),
	}

	properties, err := uc.Execute(r.Context(), filter)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponses(properties))
}

// GetProperty обрабатывает GET /properties/{id}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetProperty"})

	property, err := h.getUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// UpdateProperty обрабатывает PUT /properties/{id}
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateProperty"})

	var req PropertyRequest
	if err := decodeBody(r, contracts.UpdatePropertyRequest, &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	if err := h.updateUC.Execute(r.Context(), chi.URLParam(r, "id"), req.toUpdate()); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Property updated successfully"})
}

// DeleteProperty обрабатывает DELETE /properties/{id}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteProperty"})

	if err := h.deleteUC.Execute(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, DeletedResponse{DeletedCount: 1})
}

// ChangeStatus обрабатывает PATCH /properties/{id}/status
func (h *PropertyHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangePropertyStatus"})

	var req PropertyStatusRequest
	if err := decodeBody(r, "", &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	if err := h.statusUC.Execute(r.Context(), chi.URLParam(r, "id"), domain.PropertyStatus(req.Status)); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Property status updated"})
}

// SetAdvertised обрабатывает PATCH /properties/{id}/advertise
func (h *PropertyHandler) SetAdvertised(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SetPropertyAdvertised"})

	var req AdvertiseRequest
	if err := decodeBody(r, "", &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	if req.Advertised == nil {
		WriteJSONError(w, http.StatusBadRequest, "Field 'advertised' is required")
		return
	}

	if err := h.advertiseUC.Execute(r.Context(), chi.URLParam(r, "id"), *req.Advertised); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Property advertisement updated"})
}

// AddReview обрабатывает POST /properties/{id}/reviews
func (h *PropertyHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddPropertyReview"})

	var req ReviewRequest
	if err := decodeBody(r, contracts.CreateReviewRequest, &req); err != nil {
		logger.Warn("Invalid review body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	review := domain.PropertyReview{UserID: req.UserID, Name: req.Name, Text: req.Text}
	if err := h.addReviewUC.Execute(r.Context(), chi.URLParam(r, "id"), review); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, PropertyReviewResponse{
		UserID:    review.UserID,
		Name:      review.Name,
		Text:      review.Text,
		CreatedAt: time.Now().UTC(),
	})
}
