package rest

import (
	"bytes"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes - ограничение на размер тела запроса.
const maxBodyBytes = 1 << 20

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusFromError сопоставляет ошибки домена с HTTP-статусами.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeUseCaseError отвечает клиенту по ошибке use case.
// Сообщение берется из domain.Error, внутренние ошибки наружу не отдаются.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	code := statusFromError(err)
	if code == http.StatusInternalServerError {
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, code, "Internal server error")
		return
	}

	message := err.Error()
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	logger.Warn("Request rejected", port.Fields{"status_code": code, "reason": message})
	WriteJSONError(w, code, message)
}

// decodeBody читает тело, проверяет его по JSON-схеме и раскладывает в dst.
func decodeBody(r *http.Request, schema string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.Errorf(domain.ErrInvalidArgument, "Invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Errorf(domain.ErrInvalidArgument, "Request body is required")
	}
	if schema != "" {
		if err := contracts.Validate(schema, contracts.V1, body); err != nil {
			return domain.Errorf(domain.ErrInvalidArgument, "Invalid request body: %v", err)
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.Errorf(domain.ErrInvalidArgument, "Invalid request body")
	}
	return nil
}

// numericString возвращает число из поля, которое клиент может прислать числом или строкой.
func numericString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str)
	}
	return s
}
