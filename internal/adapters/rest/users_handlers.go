package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	registerUC usecases_port.RegisterUserUseCasePort
	roleUC     usecases_port.GetUserRoleUseCasePort
	listUC     usecases_port.ListUsersUseCasePort
	setRoleUC  usecases_port.SetUserRoleUseCasePort
	fraudUC    usecases_port.MarkUserFraudUseCasePort
	deleteUC   usecases_port.DeleteUserUseCasePort
}

func NewUserHandler(
	registerUC usecases_port.RegisterUserUseCasePort,
	roleUC usecases_port.GetUserRoleUseCasePort,
	listUC usecases_port.ListUsersUseCasePort,
	setRoleUC usecases_port.SetUserRoleUseCasePort,
	fraudUC usecases_port.MarkUserFraudUseCasePort,
	deleteUC usecases_port.DeleteUserUseCasePort,
) *UserHandler {
	return &UserHandler{
		registerUC: registerUC,
		roleUC:     roleUC,
		listUC:     listUC,
		setRoleUC:  setRoleUC,
		fraudUC:    fraudUC,
		deleteUC:   deleteUC,
	}
}

// RegisterUser обрабатывает POST /users
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RegisterUser"})

	var req RegisterUserRequest
	if err := decodeBody(r, "", &req); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	inserted, err := h.registerUC.Execute(r.Context(), domain.User{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	if !inserted {
		RespondWithJSON(w, http.StatusOK, RegisterUserResponse{Message: "user already exists", Inserted: false})
		return
	}
	RespondWithJSON(w, http.StatusOK, RegisterUserResponse{Message: "user created", Inserted: true})
}

// GetUserRole обрабатывает GET /users/role/{email}
func (h *UserHandler) GetUserRole(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetUserRole"})

	role, err := h.roleUC.Execute(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

// ListUsers обрабатывает GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListUsers"})

	users, err := h.listUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}
	RespondWithJSON(w, http.StatusOK, response)
}

// SetRole возвращает обработчик PATCH /users/{role}/{id} для заданной роли.
func (h *UserHandler) SetRole(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
			"handler": "SetRole",
			"role":    string(role),
		})

		res, err := h.setRoleUC.Execute(r.Context(), chi.URLParam(r, "id"), role)
		if err != nil {
			writeUseCaseError(w, logger, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, UpdateResultResponse{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount})
	}
}

// MarkFraud обрабатывает PATCH /users/fraud/{id}.
// Отложенное удаление объектов - 202, незавершенный каскад - 500 с частичным результатом.
func (h *UserHandler) MarkFraud(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "MarkFraud"})

	result, err := h.fraudUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil && result == nil {
		writeUseCaseError(w, logger, err)
		return
	}

	response := FraudResponse{
		MatchedCount:      result.MatchedCount,
		ModifiedCount:     result.ModifiedCount,
		DeletedProperties: result.PropertiesDeleted,
		AgentEmail:        result.AgentEmail,
		PurgeDeferred:     result.PurgeDeferred,
	}
	switch {
	case err != nil:
		logger.Error("Fraud cascade is incomplete", err, port.Fields{"agent_email": result.AgentEmail})
		response.Error = "Fraud cascade incomplete, agent listings were not deleted"
		RespondWithJSON(w, http.StatusInternalServerError, response)
	case result.PurgeDeferred:
		RespondWithJSON(w, http.StatusAccepted, response)
	default:
		RespondWithJSON(w, http.StatusOK, response)
	}
}

// DeleteUser обрабатывает DELETE /users/{id}. Тело {email} необязательно.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteUser"})

	var req DeleteUserRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to decode delete user body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.deleteUC.Execute(r.Context(), chi.URLParam(r, "id"), req.Email); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, DeletedResponse{DeletedCount: 1})
}
