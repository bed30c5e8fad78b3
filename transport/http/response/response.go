package response

import (
	"encoding/json"
	"net/http"

	"justhear/shared/constant"
	"justhear/shared/failure"
	"justhear/shared/logger"
	"justhear/shared/timezone"
)

type Error struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Success: true, Message: message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, jsonPayload)
}

// WithError sends the failure envelope every error shares: the client always
// gets success=false, a message, and when the failure happened.
func WithError(writer http.ResponseWriter, err error) {
	response(writer, failure.GetCode(err), Error{
		Success:   false,
		Error:     err.Error(),
		Timestamp: timezone.Now().Format(constant.DateFormat),
	})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	response(writer, http.StatusTooManyRequests, Error{
		Error:     constant.ResponseErrorRequestLimitExceeded,
		Timestamp: timezone.Now().Format(constant.DateFormat),
	})
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	response(writer, http.StatusServiceUnavailable, Error{
		Error:     constant.ResponseErrorPrepareShutdown,
		Timestamp: timezone.Now().Format(constant.DateFormat),
	})
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	response(writer, http.StatusServiceUnavailable, Error{
		Error:     constant.ResponseErrorUnhealthy,
		Timestamp: timezone.Now().Format(constant.DateFormat),
	})
}

func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
